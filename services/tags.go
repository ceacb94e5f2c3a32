package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// NormalizeTagIDs accepts the shapes a tag field arrives in (a comma or space separated string,
// string slices, integer slices or a mixed []any) and returns the distinct positive ids in
// first-seen order. Anything that does not parse as a positive integer is dropped.
func NormalizeTagIDs(raw any) []int64 {
	var candidates []int64
	switch v := raw.(type) {
	case nil:
		return []int64{}
	case string:
		candidates = parseTagString(v)
	case []string:
		for _, s := range v {
			candidates = append(candidates, parseTagString(s)...)
		}
	case []int:
		candidates = lo.Map(v, func(n int, _ int) int64 { return int64(n) })
	case []int64:
		candidates = v
	case []uint:
		candidates = lo.Map(v, func(n uint, _ int) int64 { return int64(n) })
	case []any:
		for _, item := range v {
			candidates = append(candidates, NormalizeTagIDs(item)...)
		}
	case int:
		candidates = []int64{int64(v)}
	case int64:
		candidates = []int64{v}
	case float64:
		if v == float64(int64(v)) {
			candidates = []int64{int64(v)}
		}
	default:
		candidates = parseTagString(fmt.Sprint(v))
	}

	positive := lo.Filter(candidates, func(id int64, _ int) bool { return id > 0 })
	return lo.Uniq(positive)
}

func parseTagString(s string) []int64 {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return lo.FilterMap(fields, func(f string, _ int) (int64, bool) {
		id, err := strconv.ParseInt(f, 10, 64)
		return id, err == nil
	})
}
