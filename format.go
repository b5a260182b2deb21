package main

import (
	"math"
	"strconv"
)

// formatDuration 格式化微秒数
//
// 大于等于 1000 微秒按毫秒显示，四舍五入到整数
func formatDuration(us float64) string {
	if us >= 1000 {
		return round(us/1000) + "ms"
	}
	return round(us) + "us"
}

func round(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}
