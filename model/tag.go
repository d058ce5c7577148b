package model

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

// TagName is the struct tag read by RegisterStruct.
const TagName = "arecord"

// Tag represents a parsed arecord struct tag.
type Tag struct {
	Ignore     bool
	Column     string
	PrimaryKey bool
	DDL        string
	Default    string
	HasDefault bool
	Text       bool
}

// ParseTag parses an arecord tag such as `pk ddl:varchar(50) default:0`.
// Space, semicolon and comma separate options; commas inside parentheses
// are kept so that `ddl:decimal(10,2)` survives.
func ParseTag(tagStr string) *Tag {
	tag := &Tag{}
	tagStr = strings.TrimSpace(tagStr)
	if tagStr == "" {
		return tag
	}
	if tagStr == "-" {
		tag.Ignore = true
		return tag
	}

	var sb strings.Builder
	depth := 0
	for _, r := range tagStr {
		switch r {
		case '(':
			depth++
			sb.WriteRune(r)
		case ')':
			if depth > 0 {
				depth--
			}
			sb.WriteRune(r)
		case ';', ',':
			if depth > 0 {
				sb.WriteRune(r)
			} else {
				sb.WriteRune(' ')
			}
		default:
			sb.WriteRune(r)
		}
	}

	for _, part := range strings.Fields(sb.String()) {
		kv := strings.SplitN(part, ":", 2)
		key := strings.ToLower(kv[0])
		var val string
		if len(kv) > 1 {
			val = strings.TrimSpace(kv[1])
		}

		switch key {
		case "column":
			tag.Column = val
		case "pk":
			tag.PrimaryKey = true
		case "ddl", "type":
			tag.DDL = val
		case "default":
			tag.Default = val
			tag.HasDefault = true
		case "text":
			tag.Text = true
		}
	}
	return tag
}

// RegisterStruct registers an entity declared as a Go struct. The entity
// name is the struct type name; attribute names are the snake_cased field
// names. Each exported field becomes a descriptor whose kind follows its
// Go type: strings map to StringField (TextField with the `text` option),
// integers to IntegerField, bool to BooleanField, floats and time.Time
// to FloatField.
func RegisterStruct(prototype any, opts ...SchemaOption) (*Schema, error) {
	decls, name, err := StructDecls(prototype)
	if err != nil {
		return nil, err
	}
	return Register(name, decls, opts...)
}

// StructDecls derives declarations from a struct without registering them.
func StructDecls(prototype any) ([]Decl, string, error) {
	if prototype == nil {
		return nil, "", fmt.Errorf("%w: value is nil", ErrInvalidStruct)
	}
	typ := reflect.TypeOf(prototype)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, "", fmt.Errorf("%w: must be a struct or pointer to struct, got %s", ErrInvalidStruct, typ.Kind())
	}

	var decls []Decl
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := ParseTag(sf.Tag.Get(TagName))
		if tag.Ignore {
			continue
		}
		f, err := fieldFor(sf.Type, tag)
		if err != nil {
			return nil, "", fmt.Errorf("%s.%s: %w", typ.Name(), sf.Name, err)
		}
		decls = append(decls, Decl{Attr: camelToSnake(sf.Name), Field: f})
	}
	return decls, typ.Name(), nil
}

var timeType = reflect.TypeOf(time.Time{})

func fieldFor(typ reflect.Type, tag *Tag) (*Field, error) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	var opts []FieldOption
	if tag.Column != "" {
		opts = append(opts, Column(tag.Column))
	}
	if tag.DDL != "" {
		opts = append(opts, DDL(tag.DDL))
	}
	if tag.PrimaryKey {
		opts = append(opts, PrimaryKey())
	}

	var f *Field
	switch {
	case typ == timeType:
		f = FloatField(opts...)
	case typ.Kind() == reflect.String && tag.Text:
		f = TextField(opts...)
	case typ.Kind() == reflect.String:
		f = StringField(opts...)
	case typ.Kind() == reflect.Bool:
		f = BooleanField(opts...)
	case typ.Kind() >= reflect.Int && typ.Kind() <= reflect.Uint64:
		f = IntegerField(opts...)
	case typ.Kind() == reflect.Float32 || typ.Kind() == reflect.Float64:
		f = FloatField(opts...)
	default:
		return nil, fmt.Errorf("%w: unsupported type %s", ErrInvalidStruct, typ)
	}

	if tag.HasDefault {
		v, err := f.Convert(tag.Default)
		if err != nil {
			return nil, err
		}
		f.def = v
		f.defFunc = nil
	}
	return f, nil
}

func camelToSnake(s string) string {
	if s == "ID" {
		return "id"
	}
	runes := []rune(s)
	var res []rune
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				res = append(res, '_')
			}
			res = append(res, unicode.ToLower(r))
		} else {
			res = append(res, r)
		}
	}
	return string(res)
}
