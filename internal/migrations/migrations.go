// Package migrations 数据库迁移脚本
package migrations

import "embed"

// FS 内嵌的迁移文件，路径为根目录
//
//go:embed *.sql
var FS embed.FS
