package console

import (
	"strconv"
	"time"
)

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func num(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}
