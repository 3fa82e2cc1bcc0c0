package coder_test

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Yamashou/jsoncoder/choice"
	"github.com/Yamashou/jsoncoder/coder"
	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/errors"
	"github.com/Yamashou/jsoncoder/jsontree"
	"github.com/Yamashou/jsoncoder/strategy"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Line struct {
	Item
	SomeValue string
	Quantity  int8
	Note      *string
	Tags      []string
}

type Item struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type Order struct {
	ID       int       `json:"id"`
	Lines    []Line    `json:"lines"`
	Refs     []*Item   `json:"refs"`
	Extra    any       `json:"extra"`
	Loose    []any     `json:"loose" coder:"list=Item"`
	Codes    []any     `json:"codes" coder:"list=int"`
	Weights  []float64 `json:"weights"`
	Bag      []any     `json:"bag" coder:"list=raw"`
	Location *Point    `json:"location"`
	Placed   time.Time `json:"placed" coder:"conv=time"`
	Amount   float64   `json:"amount" coder:"enc=string,dec=float"`
	Internal string    `json:"internal" coder:"-"`
}

func newRegistry(t *testing.T) *descriptor.Registry {
	t.Helper()
	r := descriptor.NewRegistry(nil)
	// Item is only named by a list hint in Order
	r.Register(reflect.TypeFor[Item]())
	return r
}

func TestPointScenario(t *testing.T) {
	t.Parallel()

	dec, err := coder.NewDecoder[Point]()
	if err != nil {
		t.Fatal(err)
	}
	in := []byte(`{"x":1.5,"y":-2.0}`)
	p, err := dec.Decode(in)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Point{X: 1.5, Y: -2.0}, p); diff != "" {
		t.Errorf("Decode() diff(-want +got): %s", diff)
	}

	enc, err := coder.NewEncoder[Point]()
	if err != nil {
		t.Fatal(err)
	}
	out, err := enc.Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(in), string(out)); diff != "" {
		t.Errorf("Encode() diff(-want +got): %s", diff)
	}
}

type Counts struct {
	Values []any `coder:"list=integer"`
}

type Ratios struct {
	Values []float64 `coder:"list=float"`
}

func TestPrimitiveListMismatch(t *testing.T) {
	t.Parallel()

	counts, err := coder.NewDecoder[Counts]()
	if err != nil {
		t.Fatal(err)
	}
	ratios, err := coder.NewDecoder[Ratios]()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		decode     func([]byte) (any, error)
		in         string
		wantPath   string
		wantDetail string
	}{
		{
			name:       "integer list に文字列",
			decode:     func(b []byte) (any, error) { v, err := counts.Decode(b); return v.Values, err },
			in:         `{"Values":[1,2,"oops"]}`,
			wantPath:   "Values[2]",
			wantDetail: "type mismatch got string, expected integer",
		},
		{
			name:       "integer list に double",
			decode:     func(b []byte) (any, error) { v, err := counts.Decode(b); return v.Values, err },
			in:         `{"Values":[1,2.5]}`,
			wantPath:   "Values[1]",
			wantDetail: "type mismatch got double, expected integer",
		},
		{
			name:       "double list に integer",
			decode:     func(b []byte) (any, error) { v, err := ratios.Decode(b); return v.Values, err },
			in:         `{"Values":[1,2.5]}`,
			wantPath:   "Values[0]",
			wantDetail: "type mismatch got integer, expected double",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.decode([]byte(tt.in))

			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("Decode() error = %v", err)
			}
			if e.Kind != errors.KindTypeMismatch || !errors.IsData(err) {
				t.Errorf("want a type mismatch data error, got %v", err)
			}
			if diff := cmp.Diff(tt.wantPath, errors.FormatPath(e.Path)); diff != "" {
				t.Errorf("Path diff(-want +got): %s", diff)
			}
			if diff := cmp.Diff(tt.wantDetail, e.Detail); diff != "" {
				t.Errorf("Detail diff(-want +got): %s", diff)
			}
			if !reflect.ValueOf(got).IsNil() {
				t.Errorf("no partial result on error, got %v", got)
			}
		})
	}

	ok, err := counts.Decode([]byte(`{"Values":[1,2,3]}`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(1), int64(2), int64(3)}, ok.Values); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}

	r, err := ratios.Decode([]byte(`{"Values":[1.0,2.5]}`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{1, 2.5}, r.Values); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}

func TestSnakeCaseKeys(t *testing.T) {
	t.Parallel()

	type Sample struct {
		SomeValue string
	}

	enc, err := coder.NewEncoder[Sample](coder.WithKeyConverter(strategy.SnakeCase{}))
	if err != nil {
		t.Fatal(err)
	}
	out, err := enc.Encode(Sample{SomeValue: "v"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"some_value":"v"}`, string(out)); diff != "" {
		t.Errorf("Encode() diff(-want +got): %s", diff)
	}

	dec, err := coder.NewDecoder[Sample](coder.WithKeyConverter(strategy.SnakeCase{}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := dec.Decode(out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Sample{SomeValue: "v"}, got); diff != "" {
		t.Errorf("Decode() diff(-want +got): %s", diff)
	}
}

func TestOrderRoundTrip(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	enc, err := coder.NewEncoder[*Order](coder.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	dec, err := coder.NewDecoder[*Order](coder.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}

	note := "gift"
	in := &Order{
		ID: 7,
		Lines: []Line{
			{Item: Item{Name: "pen", Price: 120}, SomeValue: "a", Quantity: 2, Note: &note, Tags: []string{"x"}},
			{Item: Item{Name: "ink", Price: 80}, Quantity: 1, Tags: []string{}},
		},
		Refs:     []*Item{{Name: "pen", Price: 120}, nil},
		Extra:    map[string]any{"k": "v", "n": int64(1)},
		Loose:    []any{Item{Name: "cap", Price: 5}},
		Codes:    []any{int64(1), int64(2)},
		Weights:  []float64{1, 2.5},
		Bag:      []any{"a", int64(1), true, nil},
		Location: &Point{X: 1.5, Y: -2},
		Placed:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Amount:   9.75,
		Internal: "dropped",
	}

	data, err := enc.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":7,` +
		`"lines":[{"Item":{"name":"pen","price":120},"SomeValue":"a","Quantity":2,"Note":"gift","Tags":["x"]},` +
		`{"Item":{"name":"ink","price":80},"SomeValue":"","Quantity":1,"Note":null,"Tags":[]}],` +
		`"refs":[{"name":"pen","price":120},null],` +
		`"extra":{"k":"v","n":1},` +
		`"loose":[{"name":"cap","price":5}],` +
		`"codes":[1,2],` +
		`"weights":[1.0,2.5],` +
		`"bag":["a",1,true,null],` +
		`"location":{"x":1.5,"y":-2.0},` +
		`"placed":"2024-01-02T03:04:05Z",` +
		`"amount":"9.75"}`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("Encode() diff(-want +got): %s", diff)
	}

	got, err := dec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	in.Internal = ""
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("Decode(Encode()) diff(-want +got): %s", diff)
	}
}

func TestRequiredAndNullable(t *testing.T) {
	t.Parallel()

	type Profile struct {
		Name     string
		Nickname *string
		Age      int    `coder:"optional"`
		Bio      string `coder:"decode=skip"`
	}

	dec, err := coder.NewDecoder[Profile]()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		in       string
		want     Profile
		wantKind errors.Kind
		wantPath string
	}{
		{name: "all present", in: `{"Name":"a","Nickname":"b","Age":3,"Bio":"x"}`, want: Profile{Name: "a", Nickname: ptr("b"), Age: 3}},
		{name: "nullable は省略できる", in: `{"Name":"a"}`, want: Profile{Name: "a"}},
		{name: "explicit null", in: `{"Name":"a","Nickname":null}`, want: Profile{Name: "a"}},
		{name: "required missing", in: `{"Nickname":"b"}`, wantKind: errors.KindFieldMissing, wantPath: "Name"},
		{name: "null for required", in: `{"Name":null}`, wantKind: errors.KindTypeMismatch, wantPath: "Name"},
		{name: "wrong kind", in: `{"Name":1}`, wantKind: errors.KindTypeMismatch, wantPath: "Name"},
		{name: "double for int", in: `{"Name":"a","Age":1.5}`, wantKind: errors.KindTypeMismatch, wantPath: "Age"},
		{name: "not an object", in: `[]`, wantKind: errors.KindTypeMismatch},
		{name: "壊れた JSON", in: `{"Name":`, wantKind: errors.KindSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dec.Decode([]byte(tt.in))
			if tt.wantKind != "" {
				var e *errors.Error
				if !stderrors.As(err, &e) {
					t.Fatalf("Decode() error = %v, want %s", err, tt.wantKind)
				}
				if e.Kind != tt.wantKind || errors.FormatPath(e.Path) != tt.wantPath {
					t.Errorf("Decode() error = %v, want %s at %q", err, tt.wantKind, tt.wantPath)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() diff(-want +got): %s", diff)
			}
		})
	}

	_, err = dec.Decode([]byte(`{"Nickname":"b"}`))
	if diff := cmp.Diff("missing required field: Name / Name", err.(*errors.Error).Detail); diff != "" {
		t.Errorf("Detail diff(-want +got): %s", diff)
	}
}

type onlyPositive struct{}

func (onlyPositive) ShouldEncode(_ string, v any) bool {
	n, ok := v.(int)
	return !ok || n > 0
}

func TestEncodeFilters(t *testing.T) {
	t.Parallel()

	type Stock struct {
		_     struct{} `coder:"encode=skipnull"`
		Name  *string
		Count int
		Left  int `coder:"encode=allow"`
	}

	tests := []struct {
		name string
		opts []coder.Option
		in   Stock
		want string
	}{
		{name: "type filter drops nulls", in: Stock{Count: 0}, want: `{"Count":0,"Left":0}`},
		{name: "set values are kept", in: Stock{Name: ptr("n"), Count: 1}, want: `{"Name":"n","Count":1,"Left":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			enc, err := coder.NewEncoder[Stock](tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			got, err := enc.Encode(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("Encode() diff(-want +got): %s", diff)
			}
		})
	}

	type Counter struct {
		A int
		B int
	}
	enc, err := coder.NewEncoder[Counter](coder.WithEncodeFilter(onlyPositive{}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := enc.Encode(Counter{A: 0, B: 2})
	if err != nil {
		t.Fatal(err)
	}
	// the key is gone, not null
	if diff := cmp.Diff(`{"B":2}`, string(got)); diff != "" {
		t.Errorf("Encode() diff(-want +got): %s", diff)
	}
}

type Circle struct {
	Radius float64 `json:"radius"`
}

type Square struct {
	Side float64 `json:"side"`
}

type Shape struct {
	descriptor.Choice
	Circle *Circle `json:"circle"`
	Square *Square `json:"square"`
}

func TestChoice(t *testing.T) {
	t.Parallel()

	dec, err := coder.NewDecoder[Shape]()
	if err != nil {
		t.Fatal(err)
	}
	s, err := dec.Decode([]byte(`{"square":{"side":2}}`))
	if err != nil {
		t.Fatal(err)
	}
	sel, ok := choice.Selected(s)
	if !ok || sel != reflect.TypeFor[Square]() {
		t.Errorf("Selected() = %v, %v", sel, ok)
	}

	both := []byte(`{"circle":{"radius":1},"square":{"side":2}}`)
	s, err = dec.Decode(both)
	if err != nil {
		t.Fatalf("lenient decoding keeps both alternatives: %v", err)
	}
	if sel, _ := choice.Selected(s); sel != reflect.TypeFor[Circle]() {
		t.Errorf("first alternative wins, got %v", sel)
	}

	strict, err := coder.NewDecoder[Shape](coder.WithStrictChoices())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := strict.Decode(both); !stderrors.Is(err, &errors.Error{Kind: errors.KindAmbiguousVariant}) {
		t.Errorf("strict Decode() error = %v", err)
	}

	enc, err := coder.NewEncoder[Shape](coder.WithEncodeFilter(strategy.SkipEncodeIfNull{}))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := choice.FromVariant[Shape](Circle{Radius: 3})
	out, err := enc.Encode(*v)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"circle":{"radius":3.0}}`, string(out)); diff != "" {
		t.Errorf("Encode() diff(-want +got): %s", diff)
	}
}

func TestMany(t *testing.T) {
	t.Parallel()

	enc, err := coder.NewEncoder[Item]()
	if err != nil {
		t.Fatal(err)
	}
	data, err := enc.EncodeMany([]Item{{Name: "a", Price: 1}, {Name: "b", Price: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`[{"name":"a","price":1},{"name":"b","price":2}]`, string(data)); diff != "" {
		t.Errorf("EncodeMany() diff(-want +got): %s", diff)
	}

	dec, err := coder.NewDecoder[*Item]()
	if err != nil {
		t.Fatal(err)
	}
	got, err := dec.DecodeMany(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]*Item{{Name: "a", Price: 1}, {Name: "b", Price: 2}}, got); diff != "" {
		t.Errorf("DecodeMany() diff(-want +got): %s", diff)
	}

	_, err = dec.DecodeMany([]byte(`[{"name":"a","price":1},{"name":"b"}]`))
	var e *errors.Error
	if !stderrors.As(err, &e) || errors.FormatPath(e.Path) != "[1].Price" {
		t.Errorf("DecodeMany() error = %v", err)
	}
	if _, err := dec.DecodeMany([]byte(`{}`)); err == nil {
		t.Error("DecodeMany wants an array")
	}
}

func TestNumbers(t *testing.T) {
	t.Parallel()

	type Small struct {
		A int8
		U uint16
		F float32
	}
	dec, err := coder.NewDecoder[Small]()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      string
		want    Small
		wantErr errors.Kind
	}{
		{name: "fits", in: `{"A":-128,"U":65535,"F":2}`, want: Small{A: -128, U: 65535, F: 2}},
		{name: "int8 overflow", in: `{"A":128,"U":0,"F":0}`, wantErr: errors.KindInvalidInput},
		{name: "negative uint", in: `{"A":0,"U":-1,"F":0}`, wantErr: errors.KindInvalidInput},
		{name: "float32 overflow", in: `{"A":0,"U":0,"F":1e300}`, wantErr: errors.KindInvalidInput},
		{name: "exponent is a double", in: `{"A":1e2,"U":0,"F":0}`, wantErr: errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dec.Decode([]byte(tt.in))
			if tt.wantErr != "" {
				if !stderrors.Is(err, &errors.Error{Kind: tt.wantErr}) {
					t.Fatalf("Decode() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() diff(-want +got): %s", diff)
			}
		})
	}
}

func TestConvertedList(t *testing.T) {
	t.Parallel()

	type Schedule struct {
		Days []time.Time `coder:"conv=time"`
		IDs  []int       `coder:"dec=int"`
	}

	dec, err := coder.NewDecoder[Schedule]()
	if err != nil {
		t.Fatal(err)
	}
	got, err := dec.Decode([]byte(`{"Days":["2024-01-02T00:00:00Z"],"IDs":["1",2,"3"]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := Schedule{
		Days: []time.Time{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		IDs:  []int{1, 2, 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() diff(-want +got): %s", diff)
	}

	_, err = dec.Decode([]byte(`{"Days":["monday"],"IDs":[]}`))
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindConverter}) {
		t.Errorf("Decode() error = %v", err)
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	enc, err := coder.NewEncoder[Point]()
	if err != nil {
		t.Fatal(err)
	}
	var nan float64
	nan = nan / nan
	if _, err := enc.Encode(Point{X: nan}); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindInvalidInput}) {
		t.Errorf("Encode(NaN) error = %v", err)
	}

	type Holder struct {
		Things []any `coder:"list=Point"`
	}
	reg := descriptor.NewRegistry(nil)
	reg.Register(reflect.TypeFor[Point]())
	henc, err := coder.NewEncoder[Holder](coder.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := henc.Encode(Holder{Things: []any{Circle{}}}); !stderrors.Is(err, &errors.Error{Kind: errors.KindTypeMismatch}) {
		t.Errorf("Encode() error = %v", err)
	}
}

func TestPrettyFlag(t *testing.T) {
	t.Parallel()

	enc, err := coder.NewEncoder[Point](coder.WithFlags(jsontree.FlagPretty))
	if err != nil {
		t.Fatal(err)
	}
	got, err := enc.Encode(Point{X: 1, Y: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{`{`, `  "x": 1.0,`, `  "y": 2.0`, `}`}, "\n")
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Encode() diff(-want +got): %s", diff)
	}
}

func TestCompileErrorSurfaces(t *testing.T) {
	t.Parallel()

	type Broken struct {
		Values []any
	}
	if _, err := coder.NewDecoder[Broken](); !stderrors.Is(err, &errors.Error{Kind: errors.KindMissingListType}) {
		t.Errorf("NewDecoder() error = %v", err)
	}

	type SameKey struct {
		A string `json:"k"`
		B string `json:"k"`
	}
	if _, err := coder.NewEncoder[SameKey](); !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidTag}) {
		t.Errorf("NewEncoder() error = %v", err)
	}
}

func TestSkippedFieldOfUnsupportedType(t *testing.T) {
	t.Parallel()

	type Cached struct {
		Name  string         `json:"name"`
		Cache map[string]int `json:"-"`
	}
	enc, err := coder.NewEncoder[Cached]()
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	out, err := enc.Encode(Cached{Name: "a", Cache: map[string]int{"x": 1}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"name":"a"}`, string(out)); diff != "" {
		t.Errorf("Encode() diff(-want +got): %s", diff)
	}

	dec, err := coder.NewDecoder[Cached]()
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	got, err := dec.Decode([]byte(`{"name":"a","Cache":{"x":1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Cached{Name: "a"}, got); diff != "" {
		t.Errorf("Decode() diff(-want +got): %s", diff)
	}
}

func ptr[T any](v T) *T { return &v }
