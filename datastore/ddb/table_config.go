/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

// TableConfig holds the attribute layout of the backing table
type TableConfig struct {
	// TableName is the DynamoDB table name
	TableName string
	// KeyAttribute is the string partition key attribute (no sort key)
	KeyAttribute string
	// FieldPrefix prefixes every hash field stored as a top-level attribute
	FieldPrefix string
	// MembersAttribute holds set members as a string set
	MembersAttribute string
}

// DefaultTableConfig returns the layout used when only a table name is known
func DefaultTableConfig(tableName string) TableConfig {
	return TableConfig{
		TableName:        tableName,
		KeyAttribute:     "pk",
		FieldPrefix:      "f_",
		MembersAttribute: "members",
	}
}

func (c TableConfig) withDefaults() TableConfig {
	d := DefaultTableConfig(c.TableName)
	if c.KeyAttribute != "" {
		d.KeyAttribute = c.KeyAttribute
	}
	if c.FieldPrefix != "" {
		d.FieldPrefix = c.FieldPrefix
	}
	if c.MembersAttribute != "" {
		d.MembersAttribute = c.MembersAttribute
	}
	return d
}
