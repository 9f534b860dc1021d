package core

import (
	"sort"
	"strconv"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// UniqueInts returns the distinct values of ids in ascending order.
func UniqueInts(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	uniq := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			uniq = append(uniq, id)
		}
	}
	sort.Ints(uniq)
	return uniq
}

// JoinInts renders ids as "1, 2, 3".
func JoinInts(ids []int) string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, strconv.Itoa(id))
	}
	return strings.Join(strs, ", ")
}
