package choice_test

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Yamashou/jsoncoder/choice"
	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/errors"
)

type Circle struct{ Radius float64 }

type Square struct{ Side float64 }

type Triangle struct{ Base, Height float64 }

type Shape struct {
	descriptor.Choice
	Circle *Circle
	Square *Square
}

func TestSelected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		v      any
		want   reflect.Type
		wantOK bool
	}{
		{name: "circle", v: Shape{Circle: &Circle{1}}, want: reflect.TypeFor[Circle](), wantOK: true},
		{name: "pointer to choice", v: &Shape{Square: &Square{2}}, want: reflect.TypeFor[Square](), wantOK: true},
		{name: "何も設定されていない", v: Shape{}, wantOK: false},
		{name: "両方設定されていれば最初のフィールド", v: Shape{Circle: &Circle{1}, Square: &Square{2}}, want: reflect.TypeFor[Circle](), wantOK: true},
		{name: "not a choice", v: Circle{1}, wantOK: false},
		{name: "nil pointer", v: (*Shape)(nil), wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := choice.Selected(tt.v)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Selected() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFromVariant(t *testing.T) {
	t.Parallel()

	got, ok := choice.FromVariant[Shape](Square{Side: 3})
	if !ok {
		t.Fatal("Square is an alternative of Shape")
	}
	if diff := cmp.Diff(&Shape{Square: &Square{Side: 3}}, got); diff != "" {
		t.Errorf("FromVariant() diff(-want +got): %s", diff)
	}

	got, ok = choice.FromVariant[Shape](&Circle{Radius: 1})
	if !ok {
		t.Fatal("*Circle is an alternative of Shape")
	}
	if diff := cmp.Diff(&Shape{Circle: &Circle{Radius: 1}}, got); diff != "" {
		t.Errorf("FromVariant() diff(-want +got): %s", diff)
	}

	if got, ok := choice.FromVariant[Shape](Triangle{}); ok || got != nil {
		t.Errorf("Triangle matches no alternative, got %v", got)
	}
	if _, ok := choice.FromVariant[Shape](nil); ok {
		t.Error("nil matches no alternative")
	}
	if _, ok := choice.FromVariant[Circle](Circle{}); ok {
		t.Error("Circle is not a choice type")
	}
}

func TestRoundTripSelection(t *testing.T) {
	t.Parallel()

	for _, alt := range []any{Circle{1}, Square{2}} {
		c, ok := choice.FromVariant[Shape](alt)
		if !ok {
			t.Fatalf("FromVariant(%T) failed", alt)
		}
		sel, ok := choice.Selected(c)
		if !ok || sel != reflect.TypeOf(alt) {
			t.Errorf("Selected(FromVariant(%T)) = %v", alt, sel)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := choice.Validate(Shape{Circle: &Circle{}}); err != nil {
		t.Errorf("one alternative is valid: %v", err)
	}
	if err := choice.Validate(Shape{}); err != nil {
		t.Errorf("no alternative is valid: %v", err)
	}

	err := choice.Validate(&Shape{Circle: &Circle{}, Square: &Square{}})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindAmbiguousVariant}) {
		t.Fatalf("Validate() error = %v", err)
	}
	if !errors.IsData(err) {
		t.Error("ambiguous input is a data error")
	}

	if err := choice.Validate(Circle{}); err == nil {
		t.Error("expected error for a non-choice value")
	}
}
