// Package arecord is a small active-record layer:
// entities declare typed fields once, and their records load and persist
// themselves through a process-wide connection pool.
package arecord

import (
	"github.com/shrek82/arecord/core"
	"github.com/shrek82/arecord/model"
	"github.com/shrek82/arecord/pool"
)

// Re-export core types and functions
type Model = core.Model
type Record = core.Record
type Config = pool.Config

var (
	Init          = pool.Init
	Shutdown      = pool.Shutdown
	DefaultConfig = pool.DefaultConfig

	NewModel = core.NewModel
	SaveAll  = core.SaveAll

	Where   = core.Where
	OrderBy = core.OrderBy
	Limit   = core.Limit
	Offset  = core.Offset

	WithCache    = core.WithCache
	WithExecutor = core.WithExecutor
)

// Re-export schema declaration
type Decl = model.Decl
type Schema = model.Schema

var (
	Register       = model.Register
	MustRegister   = model.MustRegister
	RegisterStruct = model.RegisterStruct
	TableName      = model.TableName

	StringField  = model.StringField
	IntegerField = model.IntegerField
	BooleanField = model.BooleanField
	FloatField   = model.FloatField
	TextField    = model.TextField

	PrimaryKey  = model.PrimaryKey
	Default     = model.Default
	DefaultFunc = model.DefaultFunc
	DDL         = model.DDL
	Column      = model.Column
)
