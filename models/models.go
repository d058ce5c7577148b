// Package models declares the blog's entities: users, their blogs and
// the comments on them.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shrek82/arecord/core"
	"github.com/shrek82/arecord/model"
)

// NextID returns a new primary key: the 15-digit millisecond timestamp,
// a random uuid in hex and a "000" suffix. Ids sort by creation time.
func NextID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%015d%s000", time.Now().UnixMilli(), hex)
}

// Now returns the current Unix time in seconds as a float.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func nextID() any { return NextID() }
func now() any    { return Now() }

var UserSchema = model.MustRegister("User", []model.Decl{
	{Attr: "id", Field: model.StringField(model.PrimaryKey(), model.DefaultFunc(nextID), model.DDL("varchar(50)"))},
	{Attr: "email", Field: model.StringField(model.DDL("varchar(50)"))},
	{Attr: "passwd", Field: model.StringField(model.DDL("varchar(50)"))},
	{Attr: "admin", Field: model.BooleanField()},
	{Attr: "name", Field: model.StringField(model.DDL("varchar(50)"))},
	{Attr: "image", Field: model.StringField(model.DDL("varchar(500)"))},
	{Attr: "created_at", Field: model.FloatField(model.DefaultFunc(now))},
}, model.TableName("users"))

var BlogSchema = model.MustRegister("Blog", []model.Decl{
	{Attr: "id", Field: model.StringField(model.PrimaryKey(), model.DefaultFunc(nextID), model.DDL("varchar(50)"))},
	{Attr: "user_id", Field: model.StringField(model.DDL("varchar(50)"))},
	{Attr: "user_name", Field: model.StringField(model.DDL("varchar(50)"))},
	{Attr: "user_image", Field: model.StringField(model.DDL("varchar(500)"))},
	{Attr: "name", Field: model.StringField(model.DDL("varchar(50)"))},
	{Attr: "summary", Field: model.StringField(model.DDL("varchar(50)"))},
	{Attr: "content", Field: model.TextField()},
	{Attr: "created_at", Field: model.FloatField(model.DefaultFunc(now))},
}, model.TableName("blogs"))

// Comment is declared with struct tags; its callable defaults are attached
// at registration.
type Comment struct {
	ID        string `arecord:"pk ddl:varchar(50)"`
	BlogID    string `arecord:"ddl:varchar(50)"`
	UserID    string `arecord:"ddl:varchar(50)"`
	UserName  string `arecord:"ddl:varchar(50)"`
	UserImage string `arecord:"ddl:varchar(500)"`
	Content   string `arecord:"text"`
	CreatedAt float64
}

var CommentSchema = mustRegisterStruct(&Comment{},
	model.TableName("comment"),
	model.WithDefaultFunc("id", nextID),
	model.WithDefaultFunc("created_at", now),
)

func mustRegisterStruct(prototype any, opts ...model.SchemaOption) *model.Schema {
	s, err := model.RegisterStruct(prototype, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Schemas lists the blog's schemas in dependency order.
func Schemas() []*model.Schema {
	return []*model.Schema{UserSchema, BlogSchema, CommentSchema}
}

// Handles bound to the process-wide pool.
var (
	Users    = core.NewModel(UserSchema)
	Blogs    = core.NewModel(BlogSchema)
	Comments = core.NewModel(CommentSchema)
)
