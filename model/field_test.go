package model

import (
	"errors"
	"math"
	"testing"
)

func TestFieldVariants(t *testing.T) {
	cases := []struct {
		name string
		f    *Field
		kind Kind
		ddl  string
		def  any
	}{
		{"string", StringField(), KindString, "varchar(100)", nil},
		{"integer", IntegerField(), KindInteger, "bigint", nil},
		{"boolean", BooleanField(), KindBoolean, "boolean", false},
		{"float", FloatField(), KindFloat, "real", 0.0},
		{"text", TextField(), KindText, "text", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.f.Kind() != tc.kind {
				t.Errorf("kind = %v", tc.f.Kind())
			}
			if tc.f.ColumnType() != tc.ddl {
				t.Errorf("ddl = %s", tc.f.ColumnType())
			}
			v, ok, err := tc.f.DefaultValue()
			if err != nil {
				t.Fatalf("DefaultValue failed: %v", err)
			}
			if ok != (tc.def != nil) || v != tc.def {
				t.Errorf("default = %v (%v), want %v", v, ok, tc.def)
			}
		})
	}
}

func TestFieldString(t *testing.T) {
	f := StringField(Column("email"), DDL("varchar(50)"))
	if got := f.String(); got != "<StringField,varchar(50):email>" {
		t.Errorf("String() = %s", got)
	}
}

func TestDefaultFuncInvokedEachTime(t *testing.T) {
	n := 0
	f := IntegerField(DefaultFunc(func() any { n++; return n }))
	a, _, _ := f.DefaultValue()
	b, _, _ := f.DefaultValue()
	if a != int64(1) || b != int64(2) {
		t.Errorf("Expected independent invocations, got %v and %v", a, b)
	}
	if !f.HasDefaultFunc() {
		t.Error("HasDefaultFunc should be true")
	}
}

func TestConvert(t *testing.T) {
	cases := []struct {
		f    *Field
		in   any
		want any
	}{
		{StringField(), []byte("abc"), "abc"},
		{IntegerField(), int(7), int64(7)},
		{IntegerField(), []byte("42"), int64(42)},
		{IntegerField(), float64(3), int64(3)},
		{BooleanField(), int64(1), true},
		{BooleanField(), []byte("0"), false},
		{BooleanField(), "true", true},
		{FloatField(), int64(2), float64(2)},
		{FloatField(), []byte("1.5"), 1.5},
		{TextField(), "body", "body"},
		{StringField(), nil, nil},
	}
	for _, tc := range cases {
		got, err := tc.f.Convert(tc.in)
		if err != nil {
			t.Errorf("Convert(%v) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Convert(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}

	for _, in := range []any{"abc", "1.5", 1.9, float32(-0.5), math.NaN(), math.Inf(1), uint64(math.MaxUint64)} {
		if _, err := IntegerField().Convert(in); !errors.Is(err, ErrConvert) {
			t.Errorf("Convert(%#v): expected ErrConvert, got %v", in, err)
		}
	}
	if _, _, err := IntegerField(Default(1.9)).DefaultValue(); !errors.Is(err, ErrConvert) {
		t.Errorf("A fractional default on an integer field must fail, got %v", err)
	}
}
