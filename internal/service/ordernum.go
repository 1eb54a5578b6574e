package service

import (
	"fmt"
	"time"
)

// FormatOrderNumber: ORD-YYYYMMDD-NNNNNN. Последовательность глобальная
// и по дням не сбрасывается, поэтому коллизий между датами нет.
func FormatOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), seq)
}
