// Package bulksql 面向 MySQL/MariaDB 的批量写引擎：
// 把任意行集合变成最少的多行参数化 INSERT ... ON DUPLICATE KEY UPDATE，
// 以及临时过渡表 + INNER JOIN 的集合式批量 UPDATE。
//
// 引擎只依赖 Session 协作者接口触达数据库；drivers/mysql 提供基于
// database/sql 的实现。方言（upsert 语法分支）在构造时解析一次并缓存。
package bulksql
