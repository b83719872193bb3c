package clispec

import (
	"sort"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
)

// Classify splits the parameters of a parsed executable into indexed
// parameters ordered by index, optional parameters ordered by normalized
// flag, and simple outputs that are reported through the return parameter
// file.
func Classify(exe *entities.Executable) (indexed, optional, simple []*entities.ParameterSpec, err error) {
	byIndex := map[int]string{}
	for _, p := range exe.Parameters {
		if !p.Type.Supported() {
			return nil, nil, nil, &errs.UnsupportedTypeError{Parameter: p.Identifier(), Type: string(p.Type)}
		}

		if p.Indexed() {
			if p.Flag != "" || p.LongFlag != "" {
				return nil, nil, nil, errs.SchemaErrorf("parameter %q declares both an index and a flag", p.Identifier())
			}
			if other, ok := byIndex[*p.Index]; ok {
				return nil, nil, nil, errs.SchemaErrorf("parameters %q and %q share index %d", other, p.Identifier(), *p.Index)
			}
			byIndex[*p.Index] = p.Identifier()
			if p.IsOutput() && !p.Type.StorageBacked() {
				return nil, nil, nil, &errs.InvalidIndexedOutputTypeError{Parameter: p.Identifier(), Index: *p.Index, Type: string(p.Type)}
			}
			indexed = append(indexed, p)
			continue
		}

		if p.IsSimpleOutput() {
			simple = append(simple, p)
			continue
		}
		if p.CommandFlag() == "" {
			return nil, nil, nil, errs.SchemaErrorf("optional parameter %q has neither a flag nor a longflag", p.Identifier())
		}
		if !p.IsOutput() {
			if _, _, err := DefaultValue(p); err != nil {
				return nil, nil, nil, err
			}
		}
		optional = append(optional, p)
	}

	sort.SliceStable(indexed, func(i, j int) bool {
		return *indexed[i].Index < *indexed[j].Index
	})
	sort.SliceStable(optional, func(i, j int) bool {
		return optional[i].SortKey() < optional[j].SortKey()
	})
	return indexed, optional, simple, nil
}
