package utils

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/cppla/bbsplus/config"
)

var supportedLocales = []language.Tag{language.English, language.Chinese}

var localeMatcher = language.NewMatcher(supportedLocales)

var messages = map[string][2]string{
	"common.success":          {"success", "成功"},
	"common.internal_error":   {"Internal server error", "服务器内部错误"},
	"common.not_found":        {"Not found", "未找到"},
	"common.unauthorized":     {"Login required", "请先登录"},
	"common.invalid_params":   {"Invalid parameters", "参数错误"},
	"common.rate_limited":     {"Too many requests, slow down", "请求过于频繁，请稍后再试"},
	"common.validation":       {"Validation failed", "校验失败"},
	"common.feature_disabled": {"This feature is not enabled", "该功能未启用"},

	"error.already_checked_in":  {"You have already checked in today", "今天已经签到过了"},
	"error.no_chance":           {"No lottery chance available", "没有抽奖机会"},
	"error.insufficient_points": {"Not enough points", "积分不足"},
	"error.quota_exceeded":      {"Daily extra draw limit reached", "今日额外抽奖次数已用完"},
	"error.already_collected":   {"Badge already on your wall", "该徽章已收藏"},
	"error.not_earned":          {"You have not earned this badge", "你还没有获得该徽章"},
	"error.max_reached":         {"Limit reached", "已达到数量上限"},
	"error.file_too_large":      {"File is too large", "文件过大"},

	"checkin.success":     {"Checked in, +%d points", "签到成功，获得 %d 积分"},
	"lottery.won":         {"You won: %s", "恭喜获得：%s"},
	"todo.created":        {"Item added", "添加成功"},
	"todo.updated":        {"Item updated", "更新成功"},
	"todo.deleted":        {"Item deleted", "删除成功"},
	"badge.collected":     {"Badge added to your wall", "收藏成功"},
	"badge.uncollected":   {"Badge removed from your wall", "已取消收藏"},
	"emoji.uploaded":      {"Emoji added", "表情上传成功"},
	"emoji.deleted":       {"Emoji deleted", "表情已删除"},
	"todo.title_blank":    {"Title can't be blank", "标题不能为空"},
	"todo.title_too_long": {"Title is too long (maximum is 255 characters)", "标题过长（最多 255 个字符）"},
	"todo.invalid_list":   {"List type must be todo or wish", "列表类型只能是 todo 或 wish"},
	"todo.invalid_prio":   {"Priority must be 0, 1 or 2", "优先级只能是 0、1 或 2"},
	"todo.invalid_due":    {"Due date must be YYYY-MM-DD or RFC 3339", "截止日期格式错误"},

	"emoji.upload_not_found": {"Upload not found", "上传文件不存在"},
	"emoji.name_blank":       {"Name can't be blank", "名称不能为空"},
	"emoji.name_too_long":    {"Name is too long (maximum is 50 characters)", "名称过长（最多 50 个字符）"},
	"emoji.name_taken":       {"Emoji name already exists", "表情名称已存在"},
	"emoji.url_blank":        {"Upload has no URL", "上传文件缺少地址"},
}

var printers = buildPrinters()

func buildPrinters() map[language.Tag]*message.Printer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, texts := range messages {
		for i, tag := range supportedLocales {
			if err := b.SetString(tag, key, texts[i]); err != nil {
				panic(err)
			}
		}
	}
	out := make(map[language.Tag]*message.Printer, len(supportedLocales))
	for _, tag := range supportedLocales {
		out[tag] = message.NewPrinter(tag, message.Catalog(b))
	}
	return out
}

// MatchLocale picks the supported locale closest to an Accept-Language header.
func MatchLocale(acceptLanguage, fallback string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{language.Make(fallback)}
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		_, idx, _ = localeMatcher.Match(language.Make(fallback))
	}
	return supportedLocales[idx]
}

// Translate renders key in locale. Unknown keys come back unchanged.
func Translate(locale language.Tag, key string, args ...interface{}) string {
	p, ok := printers[locale]
	if !ok {
		p = printers[language.English]
	}
	return p.Sprintf(key, args...)
}

// T renders key in the request's preferred locale.
func T(c *gin.Context, key string, args ...interface{}) string {
	locale := MatchLocale(c.GetHeader("Accept-Language"), config.Get().DefaultLocale)
	return Translate(locale, key, args...)
}
