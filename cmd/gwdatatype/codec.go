package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/buildsql"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/section"
)

const _DOCUMENT_NAME = "value"

// documentFormat picks the format of a document file from its extension, falling back to the -format flag
func documentFormat(path string, fallback section.Format) section.Format {
	if format, err := section.ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return format
	}
	return fallback
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func encode(out io.Writer, path string, format section.Format) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}
	node, err := section.Unmarshal(_DOCUMENT_NAME, data, documentFormat(path, format))
	if err != nil {
		return err
	}
	b, err := datatype.SectionToStream(node)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hex.EncodeToString(b))
	return err
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(err, "bad hex string")
	}
	return b, nil
}

func writeDocument(out io.Writer, node *section.MapSection, format section.Format) error {
	doc, err := section.Marshal(node, format)
	if err != nil {
		return err
	}
	if format == section.MSGPACK {
		_, err = fmt.Fprintln(out, hex.EncodeToString(doc))
		return err
	}
	_, err = out.Write(doc)
	if err == nil && !strings.HasSuffix(string(doc), "\n") {
		_, err = fmt.Fprintln(out)
	}
	return err
}

func decode(out io.Writer, s string, format section.Format) error {
	b, err := decodeHex(s)
	if err != nil {
		return err
	}
	node := section.NewMapSection(_DOCUMENT_NAME)
	if err := datatype.StreamToSection(b, node); err != nil {
		return err
	}
	return writeDocument(out, node, format)
}

func printDefault(out io.Writer, format section.Format) error {
	b, err := datatype.EncodeStream(datatype.DefaultValue())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %s\n", datatype.DefaultValue())
	fmt.Fprintf(out, "# stream\n%s\n# document\n", hex.EncodeToString(b))
	node := section.NewMapSection(_DOCUMENT_NAME)
	if err := datatype.EncodeSection(nil, node); err != nil {
		return err
	}
	return writeDocument(out, node, format)
}

func printSchema(out io.Writer, typeName string) error {
	if typeName == "" {
		typeName = storageTypeName()
	}
	typ := datatype.NewStructuredType(typeName)
	tbl, err := typ.Schema()
	if err != nil {
		return err
	}
	stmts, err := buildsql.NewMySQLBuilder(tbl).CreateTables(true)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "-- %s digest %016x\n", typeName, typ.Digest())
	for _, line := range strings.Split(strings.TrimSpace(tbl.String()), "\n") {
		fmt.Fprintf(out, "-- %s\n", line)
	}
	for _, stmt := range stmts {
		fmt.Fprintf(out, "%s;\n", stmt)
	}
	return nil
}
