// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package apierror

import "sync"

// UnknownMessage is returned by Classify for codes missing from the table.
const UnknownMessage = "未知错误"

// Business codes that callers commonly branch on.
const (
	CodeOK            = 0
	CodeNotLoggedIn   = -101
	CodeCSRFFailed    = -111
	CodeRiskControl   = -352
	CodeRequestDenied = -412
	CodeTooFrequent   = -799
)

type classification struct {
	message  string
	category Category
}

// codeTable is built on first use and never mutated afterwards.
//
// ref: https://socialsisteryi.github.io/bilibili-API-collect/docs/misc/errcode.html
var codeTable = sync.OnceValue(func() map[int]classification {
	return map[int]classification{
		// Authentication and session state
		-2:   {"Access Key 错误", CategoryAuth},
		-3:   {"API 校验密匙错误", CategoryAuth},
		-4:   {"调用方对该 Method 没有权限", CategoryAuth},
		-101: {"账号未登录", CategoryAuth},
		-102: {"账号被封停", CategoryAuth},
		-111: {"csrf 校验失败", CategoryAuth},
		-401: {"未认证 (或非法请求)", CategoryAuth},
		-658: {"Token 过期", CategoryAuth},
		-662: {"密码时间戳过期", CategoryAuth},

		// Request shape and risk control
		-304: {"木有改动", CategoryRequest},
		-307: {"撞车跳转", CategoryRequest},
		-352: {"风控校验失败", CategoryRequest},
		-400: {"请求错误", CategoryRequest},
		-404: {"啥都木有", CategoryRequest},
		-405: {"不支持该方法", CategoryRequest},
		-409: {"冲突", CategoryRequest},
		-412: {"请求被拦截 (客户端 ip 被服务端风控)", CategoryRequest},
		-616: {"上传文件不存在", CategoryRequest},
		-617: {"上传文件太大", CategoryRequest},

		// Upstream overload
		-112:  {"系统升级中", CategoryServer},
		-500:  {"服务器错误", CategoryServer},
		-503:  {"过载保护,服务暂不可用", CategoryServer},
		-504:  {"服务调用超时", CategoryServer},
		-509:  {"超出限制", CategoryServer},
		-799:  {"请求过于频繁，请稍后再试", CategoryServer},
		-8888: {"对不起，服务器开小差了~ (ಥ﹏ಥ)", CategoryServer},

		// Business rules
		-1:   {"应用程序不存在或已被封禁", CategoryBusiness},
		-103: {"积分不足", CategoryBusiness},
		-104: {"硬币不足", CategoryBusiness},
		-105: {"验证码错误", CategoryBusiness},
		-106: {"账号非正式会员或在适应期", CategoryBusiness},
		-107: {"应用不存在或者被封禁", CategoryBusiness},
		-108: {"未绑定手机", CategoryBusiness},
		-110: {"未绑定手机", CategoryBusiness},
		-113: {"账号尚未实名认证", CategoryBusiness},
		-114: {"请先绑定手机", CategoryBusiness},
		-115: {"请先完成实名认证", CategoryBusiness},
		-403: {"访问权限不足", CategoryBusiness},
		-625: {"登录失败次数太多", CategoryBusiness},
		-626: {"用户不存在", CategoryBusiness},
		-628: {"密码太弱", CategoryBusiness},
		-629: {"用户名或密码错误", CategoryBusiness},
		-632: {"操作对象数量限制", CategoryBusiness},
		-643: {"被锁定", CategoryBusiness},
		-650: {"用户等级太低", CategoryBusiness},
		-652: {"重复的用户", CategoryBusiness},
		-688: {"地理区域限制", CategoryBusiness},
		-689: {"版权限制", CategoryBusiness},
		-701: {"扣节操失败", CategoryBusiness},
	}
})

// Classify returns the canned message and category for an API code.
//
// It never fails: codes missing from the table map to
// (UnknownMessage, CategoryUnknown).
func Classify(code int) (string, Category) {
	if c, ok := codeTable()[code]; ok {
		return c.message, c.category
	}

	return UnknownMessage, CategoryUnknown
}
