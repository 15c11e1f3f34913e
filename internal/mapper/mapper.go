// Package mapper 把 GitHub 原始数据转换为特征记录的纯函数集合
// 各 mapper 互相独立，调用顺序不影响结果；输入为空时一律填充零值而非跳过
package mapper

import "time"

// reportLocation 统一的报告时区，GitHub 返回的 UTC 时间都折算到该时区
var reportLocation = loadReportLocation()

func loadReportLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}
