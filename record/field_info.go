package record

import "github.com/emberdb/ember/types"

// SchemaType is the JDBC-style type code a field's declared type is stored
// as throughout the catalog and on disk.
type SchemaType = types.SchemaType

const (
	Integer = types.Integer
	Varchar = types.Varchar
	Boolean = types.Boolean
	Long    = types.Long
	Short   = types.Short
	Date    = types.Date
)

// FieldInfo pairs a field's type with its declared length (meaningful only
// for Varchar fields).
type FieldInfo = types.FieldInfo
