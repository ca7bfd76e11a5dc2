package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Parse parses a declarative schema definition into typed table records.
//
// The parser is line oriented and best effort: a malformed statement is
// skipped, never rejected. An empty source yields nil, which callers treat as
// "no schema available" rather than an error.
func Parse(source string) *Schema {
	if strings.TrimSpace(source) == "" {
		return nil
	}

	s := &Schema{Tables: make(map[string]*Table)}
	lines := strings.Split(source, "\n")

	var current *Table
	blockHasID := true
	timestampLines := []int{} // line numbers of t.timestamps calls in the current block

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := versionRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(strings.ReplaceAll(m[1], "_", "")); err == nil {
				s.Version = v
			}
			continue
		}

		if m := createTableRe.FindStringSubmatch(line); m != nil {
			current = &Table{Name: m[1]}
			blockHasID = !idFalseRe.MatchString(line)
			timestampLines = timestampLines[:0]
			if blockHasID {
				current.Columns = append(current.Columns, &Column{
					Name:       "id",
					Type:       "bigint",
					Nullable:   false,
					PrimaryKey: true,
				})
				current.PrimaryKey = []string{"id"}
			}
			continue
		}

		if current != nil {
			if line == "end" {
				// Timestamp synthesis: a t.timestamps call within the 5 lines
				// preceding the block's end adds the pair exactly once.
				for _, ln := range timestampLines {
					if i-ln <= 5 {
						current.Columns = append(current.Columns,
							&Column{Name: "created_at", Type: "datetime", Nullable: false},
							&Column{Name: "updated_at", Type: "datetime", Nullable: false},
						)
						break
					}
				}
				s.Tables[current.Name] = current
				current = nil
				continue
			}

			if strings.HasPrefix(line, "t.timestamps") {
				timestampLines = append(timestampLines, i)
				continue
			}

			if m := indexInlineRe.FindStringSubmatch(line); m != nil {
				current.Indexes = append(current.Indexes, parseIndex(m[1], line))
				continue
			}

			if m := columnRe.FindStringSubmatch(line); m != nil {
				colType, name := m[1], m[2]
				if _, known := ColumnRubyTypes[colType]; !known && colType != "references" && colType != "belongs_to" {
					continue
				}
				col := &Column{Name: name, Type: colType, Nullable: !nullFalseRe.MatchString(line)}
				if dm := defaultRe.FindStringSubmatch(line); dm != nil {
					col.Default = strings.Trim(dm[1], `"'`)
				}
				if colType == "references" || colType == "belongs_to" {
					// Reference columns become <name>_id foreign keys pointing at
					// the pluralized table by convention.
					col.Name = name + "_id"
					col.Type = "bigint"
					col.ForeignKey = &ForeignKeyRef{Table: name + "s", Column: "id"}
				}
				current.Columns = append(current.Columns, col)
				continue
			}
			continue
		}

		if m := addIndexRe.FindStringSubmatch(line); m != nil {
			if table := s.Tables[m[1]]; table != nil {
				table.Indexes = append(table.Indexes, parseIndex(m[2], line))
			}
			continue
		}

		if m := addForeignKeyRe.FindStringSubmatch(line); m != nil {
			from, to := m[1], m[2]
			table := s.Tables[from]
			if table == nil {
				continue
			}
			// Resolve the conventionally named column: <to_singular>_id first,
			// then <to>_id.
			candidates := []string{strings.TrimSuffix(to, "s") + "_id", to + "_id"}
			for _, name := range candidates {
				if col := table.Column(name); col != nil {
					col.ForeignKey = &ForeignKeyRef{Table: to, Column: "id"}
					break
				}
			}
			continue
		}
	}

	// An unterminated block still contributes its table.
	if current != nil {
		s.Tables[current.Name] = current
	}

	return s
}

// parseIndex parses the bracketed column list plus unique/name options.
func parseIndex(columnList, line string) *Index {
	idx := &Index{Unique: uniqueTrueRe.MatchString(line)}
	for _, part := range strings.Split(columnList, ",") {
		col := strings.Trim(strings.TrimSpace(part), `"'`)
		if col != "" {
			idx.Columns = append(idx.Columns, col)
		}
	}
	if m := indexNameRe.FindStringSubmatch(line); m != nil {
		idx.Name = m[1]
	}
	return idx
}

var (
	versionRe       = regexp.MustCompile(`define\(version:\s*([0-9_]+)\)`)
	createTableRe   = regexp.MustCompile(`^create_table\s+["']([a-z0-9_]+)["']`)
	idFalseRe       = regexp.MustCompile(`\bid:\s*false\b`)
	columnRe        = regexp.MustCompile(`^t\.([a-z_]+)\s+["']([a-z0-9_]+)["']`)
	nullFalseRe     = regexp.MustCompile(`\bnull:\s*false\b`)
	defaultRe       = regexp.MustCompile(`\bdefault:\s*([^,]+)`)
	indexInlineRe   = regexp.MustCompile(`^t\.index\s+\[([^\]]*)\]`)
	addIndexRe      = regexp.MustCompile(`^add_index\s+["']([a-z0-9_]+)["'],\s*\[([^\]]*)\]`)
	addForeignKeyRe = regexp.MustCompile(`^add_foreign_key\s+["']([a-z0-9_]+)["'],\s*["']([a-z0-9_]+)["']`)
	uniqueTrueRe    = regexp.MustCompile(`\bunique:\s*true\b`)
	indexNameRe     = regexp.MustCompile(`\bname:\s*["']([^"']+)["']`)
)
