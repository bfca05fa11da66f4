package steps

import (
	"context"

	"github.com/cucumber/godog"
)

func variableSteps() []Definition {
	return []Definition{
		{`^variables:$`, setVariables,
			"Set variables from a | key | value | table."},
		{`^variable defaults:$`, setVariableDefaults,
			"Set variables from a | key | value | table, skipping keys that already exist."},
		{`^variable (\S+) (?:=|is) ` + quoted + `$`, setVariable,
			"Set a variable to a string. Keys may be dotted paths (user.name)."},
		{`^variable (\S+) (?:=|is) json (.+)$`, setJSONVariable,
			"Set a variable to a JSON value; unquoted keys and single quotes are accepted."},
	}
}

func setVariables(ctx context.Context, table *godog.Table) error {
	return setFromTable(ctx, table, true)
}

func setVariableDefaults(ctx context.Context, table *godog.Table) error {
	return setFromTable(ctx, table, false)
}

func setFromTable(ctx context.Context, table *godog.Table, overwrite bool) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	rows, err := hashes(table, "key", "value")
	if err != nil {
		return err
	}
	for _, row := range rows {
		if !overwrite && w.Has(row["key"]) {
			continue
		}
		if _, err := w.Set(row["key"], row["value"]); err != nil {
			return err
		}
	}
	return nil
}

func setVariable(ctx context.Context, key, value string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	_, err = w.Set(key, value)
	return err
}

func setJSONVariable(ctx context.Context, key, raw string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	value, err := ParseJSON(raw)
	if err != nil {
		return err
	}
	_, err = w.Set(key, value)
	return err
}
