package shell

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/talonops/talon/internal/ui"
)

// RenderScriptResult formats the stdout from a cloud script as one or more
// tables. Scripts return JSON of the shape {"result": [...]} where each
// result is either a flat key/value object, or an object whose values are
// themselves lists of objects (e.g. installed programs grouped by source).
// It reports whether the output was rendered; on false the caller should
// fall back to printing the raw stdout.
func (c *Console) RenderScriptResult(stdout string) bool {
	var response map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &response); err != nil {
		c.Error("Could not decode the script response from this system as JSON")
		return false
	}

	rawResults, ok := response["result"]
	if !ok {
		c.Warn("No results returned by the script from this system")
		return false
	}

	var results []map[string]interface{}
	if err := json.Unmarshal(rawResults, &results); err != nil || len(results) == 0 {
		c.Warn("No results returned by the script from this system")
		return false
	}

	if len(results) == 1 {
		c.Print("%s", ui.BoldStyle.Render("1 result:"))
	} else {
		c.Print("%s", ui.BoldStyle.Render(fmt.Sprintf("%d results:", len(results))))
	}

	first := results[0]
	if len(results) == 1 {
		if isNestedResult(first) {
			c.renderNestedResult(first)
			return true
		}
		c.renderPropertyTable(first)
		return true
	}

	c.renderResultGrid(results)
	return true
}

// isNestedResult reports whether a single result groups lists of records
// under named keys rather than holding flat properties.
func isNestedResult(result map[string]interface{}) bool {
	for _, value := range result {
		_, isList := value.([]interface{})
		return isList
	}
	return false
}

func (c *Console) renderNestedResult(result map[string]interface{}) {
	groups := make([]string, 0, len(result))
	for group := range result {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	for _, group := range groups {
		c.Print("%s", ui.BoldStyle.Render(group))

		items, ok := result[group].([]interface{})
		if !ok {
			continue
		}
		records := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			if record, ok := item.(map[string]interface{}); ok {
				records = append(records, record)
			}
		}
		c.renderResultGrid(records)
	}
}

// renderPropertyTable prints one record as a two-column key/value table.
func (c *Console) renderPropertyTable(result map[string]interface{}) {
	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, cellValue(result[key])})
	}
	c.Print("%s", ui.RenderSimpleTable(tableColumns([]string{"Field", "Value"}), rows))
}

// renderResultGrid amalgamates many flat records into one table. Columns
// are sorted alphabetically with Name forced first so rows sort usefully.
func (c *Console) renderResultGrid(results []map[string]interface{}) {
	keySet := make(map[string]struct{})
	for _, result := range results {
		for key := range result {
			keySet[key] = struct{}{}
		}
	}

	headers := make([]string, 0, len(keySet))
	for key := range keySet {
		headers = append(headers, key)
	}
	sort.Slice(headers, func(i, j int) bool {
		if (headers[i] == "Name") != (headers[j] == "Name") {
			return headers[i] == "Name"
		}
		return headers[i] < headers[j]
	})

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		row := make([]string, 0, len(headers))
		for _, header := range headers {
			row = append(row, cellValue(result[header]))
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i][0] < rows[j][0]
	})

	c.Print("%s", ui.RenderSimpleTable(tableColumns(headers), rows))
}

func tableColumns(headers []string) []ui.TableColumn {
	columns := make([]ui.TableColumn, len(headers))
	for i, header := range headers {
		columns[i] = ui.TableColumn{Title: header, Width: len(header)}
	}
	return columns
}

func cellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, cellValue(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
