package builtins

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/datacode-lang/datacode/iofs"
	"github.com/datacode-lang/datacode/pathglue"
	"github.com/datacode-lang/datacode/value"
)

func registerIO(r *Registry, svc Services) {
	r.add("path", "file", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("path() requires a String")
		}
		return pathglue.New(string(s)), nil
	})

	r.add("list_files", "file", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		raw, err := pathRaw(args[0])
		if err != nil {
			return nil, err
		}
		fsys, root, glob, err := resolveFS(svc, raw)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		if _, isPattern := args[0].(value.PathPattern); isPattern {
			if i := strings.LastIndexByte(root, '/'); i >= 0 {
				root, glob = root[:i], root[i+1:]
			} else {
				root, glob = ".", root
			}
		}
		names, err := iofs.ListNames(fsys, root, glob)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		items := make([]value.Value, len(names))
		for i, n := range names {
			items[i] = value.String(n)
		}
		return value.NewArray(items...), nil
	})

	r.add("read_file", "file", 1, 3, func(ctx *Context, args []value.Value) (value.Value, error) {
		raw, err := pathRaw(args[0])
		if err != nil {
			return nil, err
		}
		headerRow := 0
		if len(args) >= 2 {
			if n, ok := args[1].(value.Int); ok {
				headerRow = int(n)
			}
		}
		fsys, name, _, err := resolveFS(svc, raw)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		switch ext(raw) {
		case ".csv":
			t, err := parseCSV(data, headerRow, svc.Warn)
			if err != nil {
				return nil, interperrIO(ctx, err)
			}
			return value.TableValue{Ref: t}, nil
		case ".xlsx":
			// No XLSX-capable library is present anywhere in the dependency
			// pack this module was built against; see DESIGN.md.
			return nil, interperrIO(ctx, fmt.Errorf("read_file: .xlsx is not supported in this build"))
		default:
			return value.String(string(data)), nil
		}
	})

	r.add("analyze_csv", "file", 1, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		raw, err := pathRaw(args[0])
		if err != nil {
			return nil, err
		}
		headerRow := 0
		if len(args) >= 2 {
			if n, ok := args[1].(value.Int); ok {
				headerRow = int(n)
			}
		}
		fsys, name, _, err := resolveFS(svc, raw)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		t, err := parseCSV(data, headerRow, svc.Warn)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		obj := value.NewObject()
		obj.Set("headers", headerArray(t))
		obj.Set("row_count", value.Int(int64(t.RowCount)))
		types := make([]value.Value, len(t.Columns))
		for i, c := range t.Columns {
			types[i] = value.String(c.Type.String())
		}
		obj.Set("types", value.NewArray(types...))
		return obj, nil
	})

	r.add("read_csv_safe", "file", 1, 3, func(ctx *Context, args []value.Value) (value.Value, error) {
		raw, err := pathRaw(args[0])
		if err != nil {
			return nil, err
		}
		headerRow := 0
		if len(args) >= 2 {
			if n, ok := args[1].(value.Int); ok {
				headerRow = int(n)
			}
		}
		fsys, name, _, err := resolveFS(svc, raw)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		t, err := parseCSVSafe(data, headerRow, svc.Warn)
		if err != nil {
			return nil, interperrIO(ctx, err)
		}
		return value.TableValue{Ref: t}, nil
	})
}

func pathRaw(v value.Value) (string, error) {
	switch x := v.(type) {
	case value.Path:
		return x.Raw, nil
	case value.PathPattern:
		return x.Raw, nil
	case value.String:
		return string(x), nil
	}
	return "", fmt.Errorf("expects a Path, PathPattern, or String")
}

func ext(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}

// resolveFS maps a raw Path string to an fs.FS + in-fs name, routing
// `lib://<share>/...` through svc.Resolver and everything else to svc.FS
// when it is set, else to the host filesystem rooted at svc.WorkDir. The
// glob result is always ""; list_files splits a PathPattern itself.
func resolveFS(svc Services, raw string) (fsys fs.FS, name, glob string, err error) {
	if share, rest, ok := pathglue.IsRemote(raw); ok {
		if svc.Resolver == nil {
			return nil, "", "", fmt.Errorf("lib://%s/%s: no share resolver configured", share, rest)
		}
		root, ok := svc.Resolver.ResolveShare(share)
		if !ok {
			return nil, "", "", fmt.Errorf("lib://%s: share not connected", share)
		}
		return iofs.Host(root), rest, "", nil
	}
	if svc.FS != nil {
		return svc.FS, raw, "", nil
	}
	return iofs.Host(svc.WorkDir), raw, "", nil
}

func parseCSV(data []byte, headerRow int, warn func(string)) (*value.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if headerRow < 0 || headerRow >= len(records) {
		return nil, fmt.Errorf("header_row %d out of range for %d records", headerRow, len(records))
	}
	headers := records[headerRow]
	dataRecords := append(append([][]string(nil), records[:headerRow]...), records[headerRow+1:]...)
	rows := make([][]value.Value, len(dataRecords))
	for ri, rec := range dataRecords {
		row := make([]value.Value, len(rec))
		for ci, cell := range rec {
			row[ci] = inferCell(cell)
		}
		rows[ri] = row
	}
	return buildTable(rows, headers, warn)
}

// parseCSVSafe backs read_csv_safe: malformed records (wrong quoting, a
// field count different from the header row's) are dropped and warned about
// rather than aborting the whole read, the way dbcsv's chunked loader logs
// a row's error and keeps consuming the rest of the channel instead of
// stopping the import.
func parseCSVSafe(data []byte, headerRow int, warn func(string)) (*value.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	var records [][]string
	skipped := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if headerRow < 0 || headerRow >= len(records) {
		return nil, fmt.Errorf("header_row %d out of range for %d usable record(s)", headerRow, len(records))
	}
	headers := records[headerRow]
	var dataRecords [][]string
	for i, rec := range records {
		if i == headerRow {
			continue
		}
		if len(rec) != len(headers) {
			skipped++
			continue
		}
		dataRecords = append(dataRecords, rec)
	}
	if skipped > 0 && warn != nil {
		warn(fmt.Sprintf("read_csv_safe(): skipped %d malformed row(s)", skipped))
	}
	rows := make([][]value.Value, len(dataRecords))
	for ri, rec := range dataRecords {
		row := make([]value.Value, len(rec))
		for ci, cell := range rec {
			row[ci] = inferCell(cell)
		}
		rows[ri] = row
	}
	return buildTable(rows, headers, warn)
}

// inferCell parses one CSV cell into the narrowest Value it fits (int,
// then real, then string), the way dbcsv's typeOf sniffs a cell's type
// from its raw string form.
func inferCell(cell string) value.Value {
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return value.Int(n)
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return value.Real(f)
	}
	return value.String(cell)
}

func interperrIO(ctx *Context, err error) error {
	return ioError(ctx, "%s", err.Error())
}
