package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ad/go-contest-stats/internal/services"
)

const notAvailable = "n/a"

// UserLabeler turns a user id into a display name.
type UserLabeler func(id int64) string

func plainUserLabel(id int64) string {
	return fmt.Sprintf("[%d]", id)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatValue renders a statistic field value. Nil pointers mean the value is
// undefined for the data and render as n/a.
func FormatValue(value interface{}, users UserLabeler) string {
	if users == nil {
		users = plainUserLabel
	}

	switch v := value.(type) {
	case nil:
		return notAvailable
	case *float64:
		if v == nil {
			return notAvailable
		}
		return formatFloat(*v)
	case *int:
		if v == nil {
			return notAvailable
		}
		return strconv.Itoa(*v)
	case *int64:
		if v == nil {
			return notAvailable
		}
		return strconv.FormatInt(*v, 10)
	case float64:
		return formatFloat(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	case []int64:
		if len(v) == 0 {
			return "none"
		}
		labels := make([]string, len(v))
		for i, id := range v {
			labels[i] = users(id)
		}
		return strings.Join(labels, ", ")
	case []services.UserValue:
		if len(v) == 0 {
			return "none"
		}
		lines := make([]string, len(v))
		for i, uv := range v {
			lines[i] = fmt.Sprintf("%d. %s: %s", i+1, users(uv.UserID), formatFloat(uv.Value))
		}
		return strings.Join(lines, "\n")
	case *services.UserAverage:
		if v == nil {
			return notAvailable
		}
		return fmt.Sprintf("%s: %s over %d attempts", users(v.UserID), formatFloat(v.AvgScore), v.Attempts)
	default:
		return fmt.Sprintf("%v", v)
	}
}
