package display

import (
	"fmt"
	"math"
)

// Clock formats seconds as MM:SS. Minutes are not wrapped at 60.
func Clock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
