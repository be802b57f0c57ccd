package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/zx06/keyreset/internal/errors"
)

// TableFormatter 由需要按行输出的数据实现（table / csv 格式）。
type TableFormatter interface {
	ToTableData() (columns []string, rows []map[string]any, ok bool)
}

const nullPlaceholder = "<null>"

type Writer struct {
	Out io.Writer
	Err io.Writer
}

func New(out, err io.Writer) Writer {
	return Writer{Out: out, Err: err}
}

func (w Writer) WriteOK(format Format, data any) error {
	return w.write(format, Envelope{OK: true, SchemaVersion: SchemaVersion, Data: data})
}

func (w Writer) WriteError(format Format, xe *errors.XError) error {
	errObj := &ErrorObject{Code: xe.Code, Message: xe.Message, Details: xe.Details}
	return w.write(format, Envelope{OK: false, SchemaVersion: SchemaVersion, Error: errObj})
}

func (w Writer) write(format Format, env Envelope) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w.Out)
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	case FormatYAML:
		b, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		_, err = w.Out.Write(b)
		if err != nil {
			return err
		}
		if len(b) == 0 || b[len(b)-1] != '\n' {
			_, _ = w.Out.Write([]byte("\n"))
		}
		return nil
	case FormatTable:
		return writeTable(w.Out, env)
	case FormatCSV:
		return writeCSV(w.Out, env)
	default:
		return errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": string(format)})
	}
}

// ---- table ----

func writeTable(out io.Writer, env Envelope) error {
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	if !env.OK {
		if env.Error != nil {
			_, _ = fmt.Fprintf(tw, "error.code\t%s\n", env.Error.Code)
			_, _ = fmt.Fprintf(tw, "error.message\t%s\n", env.Error.Message)
			for _, k := range sortedKeys(env.Error.Details) {
				if k == "report" {
					continue
				}
				_, _ = fmt.Fprintf(tw, "error.details.%s\t%s\n", k, formatCellValue(env.Error.Details[k], nullPlaceholder))
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		// 失败前已完成部分的逐行状态
		if env.Error != nil {
			if tf, ok := env.Error.Details["report"].(TableFormatter); ok {
				_, _ = fmt.Fprintln(out)
				return writeRows(out, tf)
			}
		}
		return nil
	}

	if env.Data == nil {
		return tw.Flush()
	}
	if tf, ok := env.Data.(TableFormatter); ok {
		return writeRows(out, tf)
	}
	kv, ok := toMap(env.Data)
	if !ok {
		b, _ := json.Marshal(env.Data)
		_, _ = fmt.Fprintf(tw, "data\t%s\n", b)
		return tw.Flush()
	}
	for _, k := range sortedKeys(kv) {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, formatCellValue(kv[k], nullPlaceholder))
	}
	return tw.Flush()
}

func writeRows(out io.Writer, tf TableFormatter) error {
	cols, rows, ok := tf.ToTableData()
	if !ok {
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(cols, "\t"))
	sep := make([]string, len(cols))
	for i, c := range cols {
		sep[i] = strings.Repeat("-", len(c))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(sep, "\t"))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = formatCellValue(row[c], nullPlaceholder)
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "(%d rows)\n", len(rows))
	return err
}

// ---- csv ----

func writeCSV(out io.Writer, env Envelope) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()
	if !env.OK {
		if env.Error != nil {
			_ = cw.Write([]string{"error.code", string(env.Error.Code)})
			_ = cw.Write([]string{"error.message", env.Error.Message})
		}
		return cw.Error()
	}
	if env.Data == nil {
		return cw.Error()
	}
	if tf, ok := env.Data.(TableFormatter); ok {
		if cols, rows, ok := tf.ToTableData(); ok {
			_ = cw.Write(cols)
			for _, row := range rows {
				rec := make([]string, len(cols))
				for i, c := range cols {
					rec[i] = formatCellValue(row[c], "")
				}
				_ = cw.Write(rec)
			}
			return cw.Error()
		}
	}
	if kv, ok := toMap(env.Data); ok {
		for _, k := range sortedKeys(kv) {
			_ = cw.Write([]string{k, formatCellValue(kv[k], "")})
		}
		return cw.Error()
	}
	b, _ := json.Marshal(env.Data)
	_ = cw.Write([]string{"data", string(b)})
	return cw.Error()
}

// ---- helpers ----

// toMap 把结构体等数据经 JSON 转为 map，便于 key/value 输出。
func toMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false
	}
	return m, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatCellValue(v any, null string) string {
	switch x := v.(type) {
	case nil:
		return null
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int, int64, bool:
		return fmt.Sprint(x)
	case fmt.Stringer:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
