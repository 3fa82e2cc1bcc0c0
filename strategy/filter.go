package strategy

// AllowEncode writes every field.
type AllowEncode struct{}

func (AllowEncode) ShouldEncode(string, any) bool { return true }

// SkipEncode never writes the field.
type SkipEncode struct{}

func (SkipEncode) ShouldEncode(string, any) bool { return false }

// SkipEncodeIfNull omits fields whose value is nil. Used at type level it
// drops every null field of the type.
type SkipEncodeIfNull struct{}

func (SkipEncodeIfNull) ShouldEncode(_ string, value any) bool { return value != nil }

// AllowDecode reads every field.
type AllowDecode struct{}

func (AllowDecode) ShouldDecode(string) bool { return true }

// SkipDecode never reads the field; it keeps its zero value.
type SkipDecode struct{}

func (SkipDecode) ShouldDecode(string) bool { return false }

// Skip excludes a field in both directions.
type Skip struct{}

func (Skip) ShouldEncode(string, any) bool { return false }
func (Skip) ShouldDecode(string) bool      { return false }
