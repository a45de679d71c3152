package http

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	apperrors "k9harmony/pkg/errors"
)

var yearMonthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func RequiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", apperrors.InvalidInput("missing required query parameter: " + name)
	}
	return v, nil
}

func OptionalBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}

// ParseYearMonth accepts YYYY-MM and returns year and month.
func ParseYearMonth(s string) (int, int, error) {
	if !yearMonthRegex.MatchString(s) {
		return 0, 0, apperrors.InvalidInput("year_month must be in YYYY-MM format, got: " + s)
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:])
	return year, month, nil
}
