package entitystoragemysql

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/buildsql"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/consts"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/schema"
	"github.com/xiaonanln/gwdatatype/engine/section"
	"github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

const _SECTION_NAME = "entity"

// ErrLayoutChanged is the cause of opening a type whose stored tables were created from another declaration
var ErrLayoutChanged = errors.New("stored layout does not match the type declaration")

type typeTables struct {
	decl    *schema.Table
	builder *buildsql.MySQLBuilder
}

type mysqlEntityStorage struct {
	db    *sql.DB
	types map[string]*typeTables
}

// OpenMySQL opens a MySQL database as entity storage.
//
// Every type is stored relationally as its schema declares: tbl_<Type> holds one
// row per entity and each sub-table tbl_<Type>_<sub> holds the rows of one
// mapping, linked by parentID. Tables are created on first use.
func OpenMySQL(driverName string, url string) (storagecommon.EntityStorage, error) {
	db, err := sql.Open(driverName, url)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping mysql failed")
	}

	return &mysqlEntityStorage{
		db:    db,
		types: map[string]*typeTables{},
	}, nil
}

func (es *mysqlEntityStorage) tablesOf(typeName string) (*typeTables, error) {
	if tt := es.types[typeName]; tt != nil {
		return tt, nil
	}

	typ := datatype.NewStructuredType(typeName)
	decl, err := typ.Schema()
	if err != nil {
		return nil, err
	}
	if err := checkSupported(decl); err != nil {
		return nil, err
	}

	builder := buildsql.NewMySQLBuilder(decl)
	stmts, err := builder.CreateTables(true)
	if err != nil {
		return nil, err
	}
	stmts = append([]string{buildsql.CreateMetaTable()}, stmts...)
	for _, stmt := range stmts {
		if consts.DEBUG_SAVE_LOAD {
			gwlog.Debugf("mysql: %s", stmt)
		}
		if _, err := es.db.Exec(stmt); err != nil {
			return nil, errors.Wrapf(err, "create tables of %s", typeName)
		}
	}

	if err := es.checkDigest(typeName, typ.Digest()); err != nil {
		return nil, err
	}

	tt := &typeTables{decl: decl, builder: builder}
	es.types[typeName] = tt
	return tt, nil
}

func (es *mysqlEntityStorage) checkDigest(typeName string, digest uint64) error {
	var stored uint64
	err := es.db.QueryRow(buildsql.SelectDigest(), typeName).Scan(&stored)
	if err == sql.ErrNoRows {
		_, err = es.db.Exec(buildsql.UpsertDigest(), typeName, digest)
		return err
	} else if err != nil {
		return err
	}
	if stored != digest {
		return errors.Wrapf(ErrLayoutChanged, "%s: stored digest %016x, declared %016x", typeName, stored, digest)
	}
	return nil
}

// checkSupported rejects declarations this backend cannot map: nested sub-tables and non int / string columns
func checkSupported(decl *schema.Table) error {
	check := func(t *schema.Table) error {
		for _, c := range t.Columns {
			if !c.Type.IsInt() && !c.Type.IsVariableLength() {
				return errors.Errorf("table %s: column %s of type %s is not supported", t.Name, c.Name, c.Type)
			}
		}
		return nil
	}
	if err := check(decl); err != nil {
		return err
	}
	for _, sub := range decl.SubTables {
		if len(sub.SubTables) > 0 {
			return errors.Errorf("table %s: nested sub-table %s is not supported", decl.Name, sub.SubTables[0].Name)
		}
		if err := check(sub); err != nil {
			return err
		}
	}
	return nil
}


// columnArgs reads the declared columns of t from node in declaration order.
// A value the column cannot hold fails with an EncodingError labelled prefix+column.
func columnArgs(t *schema.Table, node section.DataSection, prefix string) ([]interface{}, error) {
	args := make([]interface{}, len(t.Columns))
	for i := range t.Columns {
		c := &t.Columns[i]
		if c.Type.IsInt() {
			n, ok := node.ReadInt(c.Name)
			if !ok {
				return nil, errors.Errorf("table %s: field %s is missing", t.Name, c.Name)
			}
			if err := c.CheckInt(prefix+c.Name, n); err != nil {
				return nil, err
			}
			args[i] = n
		} else {
			s, ok := node.ReadString(c.Name)
			if !ok {
				return nil, errors.Errorf("table %s: field %s is missing", t.Name, c.Name)
			}
			if err := c.CheckString(prefix+c.Name, s); err != nil {
				return nil, err
			}
			args[i] = s
		}
	}
	return args, nil
}

// childArgs reads the rows of every sub-table of t from node
func childArgs(t *schema.Table, node section.DataSection) ([][][]interface{}, error) {
	rows := make([][][]interface{}, len(t.SubTables))
	for i, sub := range t.SubTables {
		children, _ := node.Children(sub.Name)
		for j, child := range children {
			args, err := columnArgs(sub, child, fmt.Sprintf("%s[%d].", sub.Name, j))
			if err != nil {
				return nil, err
			}
			rows[i] = append(rows[i], args)
		}
	}
	return rows, nil
}

// scanTargets returns Scan destinations for the declared columns of t
func scanTargets(t *schema.Table) []interface{} {
	targets := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		if c.Type.IsInt() {
			targets[i] = new(int64)
		} else {
			targets[i] = new(string)
		}
	}
	return targets
}

// writeScanned writes values scanned into targets to node
func writeScanned(t *schema.Table, targets []interface{}, node section.DataSection) {
	for i, c := range t.Columns {
		switch v := targets[i].(type) {
		case *int64:
			node.WriteInt(c.Name, *v)
		case *string:
			node.WriteString(c.Name, *v)
		}
	}
}

func (es *mysqlEntityStorage) List(typeName string) ([]common.EntityID, error) {
	tt, err := es.tablesOf(typeName)
	if err != nil {
		return nil, err
	}

	rows, err := es.db.Query(tt.builder.SelectIDs())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eids []common.EntityID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		eids = append(eids, common.EntityID(id))
	}
	return eids, rows.Err()
}

func (es *mysqlEntityStorage) Write(typeName string, entityID common.EntityID, data *datatype.StructuredValue) (err error) {
	if err = storagecommon.CheckStorable(data); err != nil {
		return
	}
	tt, err := es.tablesOf(typeName)
	if err != nil {
		return
	}

	node := section.NewMapSection(_SECTION_NAME)
	if err = datatype.EncodeSection(data, node); err != nil {
		return
	}
	mainArgs, err := columnArgs(tt.decl, node, "")
	if err != nil {
		return
	}
	subRows, err := childArgs(tt.decl, node)
	if err != nil {
		return
	}

	tx, err := es.db.Begin()
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(tt.builder.UpsertMain(), append([]interface{}{string(entityID)}, mainArgs...)...); err != nil {
		return
	}
	for i, sub := range tt.decl.SubTables {
		if _, err = tx.Exec(tt.builder.DeleteChildren(sub), string(entityID)); err != nil {
			return
		}
		insert := tt.builder.InsertChild(sub)
		for _, args := range subRows[i] {
			if _, err = tx.Exec(insert, append([]interface{}{string(entityID)}, args...)...); err != nil {
				return
			}
		}
	}
	err = tx.Commit()
	return
}

func (es *mysqlEntityStorage) Read(typeName string, entityID common.EntityID) (*datatype.StructuredValue, error) {
	tt, err := es.tablesOf(typeName)
	if err != nil {
		return nil, err
	}

	node := section.NewMapSection(_SECTION_NAME)
	targets := scanTargets(tt.decl)
	if len(targets) == 0 {
		targets = []interface{}{new(string)} // SelectMain falls back to the id column
	}
	err = es.db.QueryRow(tt.builder.SelectMain(), string(entityID)).Scan(targets...)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	writeScanned(tt.decl, targets, node)

	for _, sub := range tt.decl.SubTables {
		if err := es.readChildren(tt, sub, entityID, node); err != nil {
			return nil, err
		}
	}
	return datatype.DecodeSection(node)
}

func (es *mysqlEntityStorage) readChildren(tt *typeTables, sub *schema.Table, entityID common.EntityID, node section.DataSection) error {
	rows, err := es.db.Query(tt.builder.SelectChildren(sub), string(entityID))
	if err != nil {
		return err
	}
	defer rows.Close()

	coll := node.CreateChildCollection(sub.Name)
	for rows.Next() {
		targets := scanTargets(sub)
		if err := rows.Scan(targets...); err != nil {
			return err
		}
		writeScanned(sub, targets, coll.NewChild(section.DEFAULT_CHILD_NAME))
	}
	return rows.Err()
}

func (es *mysqlEntityStorage) Exists(typeName string, entityID common.EntityID) (bool, error) {
	tt, err := es.tablesOf(typeName)
	if err != nil {
		return false, err
	}
	var one int
	err = es.db.QueryRow(tt.builder.ExistsMain(), string(entityID)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (es *mysqlEntityStorage) Close() {
	es.db.Close()
}

func (es *mysqlEntityStorage) IsEOF(err error) bool {
	return err == driver.ErrBadConn || err == mysql.ErrInvalidConn
}
