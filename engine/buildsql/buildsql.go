// Package buildsql renders schema declarations into MySQL statements
package buildsql

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/consts"
	"github.com/xiaonanln/gwdatatype/engine/schema"
)

const (
	// ID_COLUMN is the primary key of every generated table
	ID_COLUMN = "id"
	// META_TABLE records the digest of every type stored in the database
	META_TABLE = consts.SQL_TABLE_PREFIX + "gwdatatype_meta"
)

// SQLBuilder builds CREATE TABLE statements
type SQLBuilder interface {
	CreateTable(tableName string, ifNotExists bool) (sql string, args []interface{})
}

// MySQLBuilder renders one type declaration: the main table tbl_<Type> keyed by
// entity ID, and one tbl_<Type>_<sub> table per sub-table linked by parentID
type MySQLBuilder struct {
	root   *schema.Table
	tables []*tableInfo
	byName map[string]*tableInfo
}

type tableInfo struct {
	decl   *schema.Table
	name   string
	parent *tableInfo
}

var _ SQLBuilder = (*MySQLBuilder)(nil)

// NewMySQLBuilder creates a builder for the declaration
func NewMySQLBuilder(t *schema.Table) *MySQLBuilder {
	b := &MySQLBuilder{
		root:   t,
		byName: map[string]*tableInfo{},
	}
	b.addTable(t, consts.SQL_TABLE_PREFIX+t.Name, nil)
	return b
}

func (b *MySQLBuilder) addTable(t *schema.Table, name string, parent *tableInfo) {
	info := &tableInfo{decl: t, name: name, parent: parent}
	b.tables = append(b.tables, info)
	b.byName[name] = info
	for _, st := range t.SubTables {
		b.addTable(st, name+"_"+st.Name, info)
	}
}

// EscapeID quotes an identifier
func EscapeID(id string) string {
	return "`" + strings.Replace(id, "`", "``", -1) + "`"
}

// ColumnName returns the generated column name of a declared column
func ColumnName(name string) string {
	return consts.SQL_COLUMN_PREFIX + name
}

// ColumnSQLType returns the MySQL type of a declared column
func ColumnSQLType(c schema.Column) (string, error) {
	switch c.Type {
	case schema.INT8:
		return "TINYINT", nil
	case schema.INT16:
		return "SMALLINT", nil
	case schema.INT32:
		return "INT", nil
	case schema.INT64:
		return "BIGINT", nil
	case schema.UINT8:
		return "TINYINT UNSIGNED", nil
	case schema.UINT16:
		return "SMALLINT UNSIGNED", nil
	case schema.UINT32:
		return "INT UNSIGNED", nil
	case schema.UINT64:
		return "BIGINT UNSIGNED", nil
	case schema.FLOAT32:
		return "FLOAT", nil
	case schema.FLOAT64:
		return "DOUBLE", nil
	case schema.STRING:
		return fmt.Sprintf("VARCHAR(%d)", c.MaxLength), nil
	case schema.BLOB:
		if c.MaxLength <= 0xFFFF {
			return "BLOB", nil
		}
		return "MEDIUMBLOB", nil
	}
	return "", errors.Errorf("column %s: unsupported type %s", c.Name, c.Type)
}

// TableNames returns all generated table names, parents before children
func (b *MySQLBuilder) TableNames() []string {
	names := make([]string, len(b.tables))
	for i, t := range b.tables {
		names[i] = t.name
	}
	return names
}

// MainTable returns the name of the main table
func (b *MySQLBuilder) MainTable() string {
	return b.tables[0].name
}

// SubTableName returns the generated table name of a direct sub-table of the main table
func (b *MySQLBuilder) SubTableName(sub string) string {
	return b.MainTable() + "_" + sub
}

// Declaration returns the declaration the named table was generated from, or nil
func (b *MySQLBuilder) Declaration(tableName string) *schema.Table {
	if info := b.byName[tableName]; info != nil {
		return info.decl
	}
	return nil
}

// CreateTable returns the CREATE TABLE statement of one generated table, or "" if the name is unknown
func (b *MySQLBuilder) CreateTable(tableName string, ifNotExists bool) (string, []interface{}) {
	info := b.byName[tableName]
	if info == nil {
		return "", nil
	}
	sql, err := b.createTable(info, ifNotExists)
	if err != nil {
		return "", nil
	}
	return sql, nil
}

// CreateTables returns CREATE TABLE statements for all generated tables
func (b *MySQLBuilder) CreateTables(ifNotExists bool) ([]string, error) {
	stmts := make([]string, 0, len(b.tables))
	for _, info := range b.tables {
		sql, err := b.createTable(info, ifNotExists)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}
	return stmts, nil
}

func (b *MySQLBuilder) createTable(info *tableInfo, ifNotExists bool) (string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(EscapeID(info.name))
	sb.WriteString(" (\n")

	var defs []string
	if info.parent == nil {
		defs = append(defs, fmt.Sprintf("\t%s CHAR(%d) NOT NULL PRIMARY KEY", EscapeID(ID_COLUMN), common.ENTITYID_LENGTH))
	} else {
		defs = append(defs, fmt.Sprintf("\t%s BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY", EscapeID(ID_COLUMN)))
		defs = append(defs, fmt.Sprintf("\t%s %s NOT NULL", EscapeID(consts.SQL_PARENT_ID_COLUMN), parentIDType(info.parent)))
	}
	for _, c := range info.decl.Columns {
		typ, err := ColumnSQLType(c)
		if err != nil {
			return "", errors.Wrapf(err, "table %s", info.name)
		}
		defs = append(defs, fmt.Sprintf("\t%s %s NOT NULL", EscapeID(ColumnName(c.Name)), typ))
	}
	if info.parent != nil {
		defs = append(defs, fmt.Sprintf("\tINDEX (%s)", EscapeID(consts.SQL_PARENT_ID_COLUMN)))
	}
	sb.WriteString(strings.Join(defs, ",\n"))
	sb.WriteString("\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	return sb.String(), nil
}

func parentIDType(parent *tableInfo) string {
	if parent.parent == nil {
		return fmt.Sprintf("CHAR(%d)", common.ENTITYID_LENGTH)
	}
	return "BIGINT UNSIGNED"
}

func columnList(t *schema.Table) []string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = EscapeID(ColumnName(c.Name))
	}
	return cols
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// UpsertMain returns the statement writing the main table row; args are the id then the columns in declaration order
func (b *MySQLBuilder) UpsertMain() string {
	cols := columnList(b.root)
	updates := make([]string, len(cols))
	for i, c := range cols {
		updates[i] = fmt.Sprintf("%s=VALUES(%s)", c, c)
	}
	all := append([]string{EscapeID(ID_COLUMN)}, cols...)
	if len(updates) == 0 {
		return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (?)", EscapeID(b.MainTable()), EscapeID(ID_COLUMN))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s", EscapeID(b.MainTable()),
		strings.Join(all, ","), placeholders(len(all)), strings.Join(updates, ","))
}

// SelectMain returns the statement reading the main table columns of one id
func (b *MySQLBuilder) SelectMain() string {
	cols := columnList(b.root)
	if len(cols) == 0 {
		cols = []string{EscapeID(ID_COLUMN)}
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s=?", strings.Join(cols, ","), EscapeID(b.MainTable()), EscapeID(ID_COLUMN))
}

// SelectIDs returns the statement listing all ids of the main table
func (b *MySQLBuilder) SelectIDs() string {
	return fmt.Sprintf("SELECT %s FROM %s", EscapeID(ID_COLUMN), EscapeID(b.MainTable()))
}

// ExistsMain returns the statement checking one id in the main table
func (b *MySQLBuilder) ExistsMain() string {
	return fmt.Sprintf("SELECT 1 FROM %s WHERE %s=? LIMIT 1", EscapeID(b.MainTable()), EscapeID(ID_COLUMN))
}

// InsertChild returns the statement adding one sub-table row; args are parentID then the columns
func (b *MySQLBuilder) InsertChild(sub *schema.Table) string {
	all := append([]string{EscapeID(consts.SQL_PARENT_ID_COLUMN)}, columnList(sub)...)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", EscapeID(b.SubTableName(sub.Name)), strings.Join(all, ","), placeholders(len(all)))
}

// DeleteChildren returns the statement removing all sub-table rows of one parent
func (b *MySQLBuilder) DeleteChildren(sub *schema.Table) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s=?", EscapeID(b.SubTableName(sub.Name)), EscapeID(consts.SQL_PARENT_ID_COLUMN))
}

// SelectChildren returns the statement reading all sub-table rows of one parent in insertion order
func (b *MySQLBuilder) SelectChildren(sub *schema.Table) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s=? ORDER BY %s", strings.Join(columnList(sub), ","), EscapeID(b.SubTableName(sub.Name)),
		EscapeID(consts.SQL_PARENT_ID_COLUMN), EscapeID(ID_COLUMN))
}

// CreateMetaTable returns the statement creating the digest table
func CreateMetaTable() string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t`name` VARCHAR(%d) NOT NULL PRIMARY KEY,\n\t`digest` BIGINT UNSIGNED NOT NULL\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		EscapeID(META_TABLE), 255)
}

// SelectDigest returns the statement reading the recorded digest of a type
func SelectDigest() string {
	return fmt.Sprintf("SELECT `digest` FROM %s WHERE `name`=?", EscapeID(META_TABLE))
}

// UpsertDigest returns the statement recording the digest of a type
func UpsertDigest() string {
	return fmt.Sprintf("INSERT INTO %s (`name`,`digest`) VALUES (?,?) ON DUPLICATE KEY UPDATE `digest`=VALUES(`digest`)", EscapeID(META_TABLE))
}
