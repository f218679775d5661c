package sharding

import (
	"fmt"
	"strconv"
	"strings"
)

// maxInlineValues caps how many values a single expression may expand to.
const maxInlineValues = 10000

// ExpandInline expands an inline expression into its values.
//
//	"ds_${0..1}.t_${[a, b]}" -> ds_0.t_a, ds_0.t_b, ds_1.t_a, ds_1.t_b
//
// Top-level commas separate independent expressions.
func ExpandInline(expr string) ([]string, error) {
	var results []string

	for _, segment := range splitSegments(expr) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		expanded, err := expandSegment(segment)
		if err != nil {
			return nil, err
		}

		results = append(results, expanded...)
	}

	return results, nil
}

// splitSegments splits on commas that are not inside ${...}.
func splitSegments(expr string) []string {
	var (
		segments []string
		depth    int
		begin    int
	)

	for i := 0; i < len(expr); i++ {
		switch {
		case expr[i] == '$' && i+1 < len(expr) && expr[i+1] == '{':
			depth++
			i++
		case expr[i] == '}' && depth > 0:
			depth--
		case expr[i] == ',' && depth == 0:
			segments = append(segments, expr[begin:i])
			begin = i + 1
		}
	}

	return append(segments, expr[begin:])
}

func expandSegment(s string) ([]string, error) {
	open := strings.Index(s, "${")
	if open < 0 {
		return []string{s}, nil
	}

	closing := strings.IndexByte(s[open:], '}')
	if closing < 0 {
		return nil, fmt.Errorf("%w: unclosed placeholder in '%s'", ErrInvalidInlineExpression, s)
	}

	closing += open

	values, err := expandPlaceholder(s[open+2 : closing])
	if err != nil {
		return nil, err
	}

	rests, err := expandSegment(s[closing+1:])
	if err != nil {
		return nil, err
	}

	if len(values)*len(rests) > maxInlineValues {
		return nil, fmt.Errorf("%w: '%s' expands to more than %d values", ErrInvalidInlineExpression, s, maxInlineValues)
	}

	results := make([]string, 0, len(values)*len(rests))
	for _, value := range values {
		for _, rest := range rests {
			results = append(results, s[:open]+value+rest)
		}
	}

	return results, nil
}

func expandPlaceholder(body string) ([]string, error) {
	body = strings.TrimSpace(body)

	if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") {
		var values []string

		for _, item := range strings.Split(body[1:len(body)-1], ",") {
			item = strings.Trim(strings.TrimSpace(item), `'"`)
			if item != "" {
				values = append(values, item)
			}
		}

		if len(values) == 0 {
			return nil, fmt.Errorf("%w: empty list '${%s}'", ErrInvalidInlineExpression, body)
		}

		return values, nil
	}

	from, to, ok := strings.Cut(body, "..")
	if !ok {
		return nil, fmt.Errorf("%w: '${%s}'", ErrInvalidInlineExpression, body)
	}

	begin, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return nil, fmt.Errorf("%w: '${%s}': %v", ErrInvalidInlineExpression, body, err)
	}

	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return nil, fmt.Errorf("%w: '${%s}': %v", ErrInvalidInlineExpression, body, err)
	}

	if begin > end {
		return nil, fmt.Errorf("%w: descending range '${%s}'", ErrInvalidInlineExpression, body)
	}

	if uint64(end-begin) >= maxInlineValues {
		return nil, fmt.Errorf("%w: range '${%s}' exceeds %d values", ErrInvalidInlineExpression, body, maxInlineValues)
	}

	values := make([]string, 0, end-begin+1)
	for i := begin; i <= end; i++ {
		values = append(values, strconv.Itoa(i))
	}

	return values, nil
}
