package loadbench

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Shell is an interactive client issuing single operations against a
// database.
type Shell struct {
	db    DB
	table string
}

func NewShell(db DB, table string) *Shell {
	return &Shell{
		db:    db,
		table: table,
	}
}

var (
	regexCmd = regexp.MustCompile(`\s+`)
)

func printRecord(w io.Writer, record KVMap) {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		Fprintf(w, "%s=%s", k, record[k])
	}
}

func parseValues(w io.Writer, parts []string) (KVMap, bool) {
	values := make(KVMap)
	for _, part := range parts {
		nv := strings.SplitN(part, "=", 2)
		if len(nv) != 2 {
			Fprintf(w, `Error: invalid name=value %s`, part)
			return nil, false
		}
		values[nv[0]] = nv[1]
	}
	return values, true
}

// Run reads commands from r until "quit" or the end of input, writing the
// results to w. The database must already be initialized.
func (self *Shell) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	Fprintf(w, "loadbench Command Line Client")
	Fprintf(w, `Type "help" for command line help`)
	scanner := bufio.NewScanner(r)
	for {
		io.WriteString(w, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		startTime := time.Now()
		switch line {
		case "":
			continue
		case "help":
			self.help(w)
			continue
		case "quit":
			return nil
		}
		self.execute(ctx, w, regexCmd.Split(line, -1))
		Fprintf(w, "%d ms", time.Since(startTime).Milliseconds())
	}
	return scanner.Err()
}

func (self *Shell) execute(ctx context.Context, w io.Writer, parts []string) {
	length := len(parts)
	switch parts[0] {
	case "table":
		switch length {
		case 1:
			Fprintf(w, `Using table "%s"`, self.table)
		case 2:
			self.table = parts[1]
			Fprintf(w, `Using table "%s"`, self.table)
		default:
			Fprintf(w, `Error: syntax is "table tablename"`)
		}
	case "read":
		if length == 1 {
			Fprintf(w, `Error: syntax is "read keyname [field1 field2 ...]"`)
			return
		}
		ret, err := self.db.Read(ctx, self.table, parts[1], parts[2:])
		Fprintf(w, "Return code: %s", StatusOf(err))
		printRecord(w, ret)
	case "scan":
		if length < 3 {
			Fprintf(w, `Error: syntax is "scan keyname scanlength [field1 field2 ...]"`)
			return
		}
		scanLength, err := strconv.ParseInt(parts[2], 0, 64)
		if err != nil {
			Fprintf(w, "invalid scanlength: %s", parts[2])
			return
		}
		scanner, ok := self.db.(Scanner)
		if !ok {
			Fprintf(w, "Return code: %s", StatusNotImplemented)
			return
		}
		ret, err := scanner.Scan(ctx, self.table, parts[1], scanLength, parts[3:])
		Fprintf(w, "Return code: %s", StatusOf(err))
		if len(ret) == 0 {
			Fprintf(w, "0 records")
			return
		}
		Fprintf(w, "--------------------------------")
		for i, record := range ret {
			Fprintf(w, "Record %d", i)
			printRecord(w, record)
			Fprintf(w, "--------------------------------")
		}
	case "insert", "update":
		if length < 3 {
			Fprintf(w, `Error: syntax is "%s keyname name1=value1 [name2=value2 ...]"`, parts[0])
			return
		}
		values, ok := parseValues(w, parts[2:])
		if !ok {
			return
		}
		err := self.db.Insert(ctx, self.table, parts[1], values)
		Fprintf(w, "Result: %s", StatusOf(err))
	default:
		Fprintf(w, `Error: unknown command "%s"`, parts[0])
	}
}

func (self *Shell) help(w io.Writer) {
	const helpFormat = `Commands
  read key [field1 field2 ...] - Read a record
  scan key recordcount [field1 field2 ...] - Scan starting at key
  insert key name1=value1 [name2=value2 ...] - Insert a new record
  update key name1=value1 [name2=value2 ...] - Update a record
  table [tablename] - Get or [set] the name of the table
  quit - Quit`
	Fprintf(w, helpFormat)
}
