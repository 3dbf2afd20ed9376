// Package deeplink 移动端登录完成后把令牌交给 App 的跳转页。
//
// 页面同时用隐藏 iframe 与 location.href 唤起自定义 scheme，2 秒后页面仍可见就显示失败提示与重试按钮。
// 可见性只是 App 已打开的近似信号，误报与漏报都靠手动重试兜底。
package deeplink

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
)

// DefaultScheme App 注册的 URL scheme
const DefaultScheme = "keenmind.me"

// OpenTimeoutMillis 判定唤起失败前的等待时间
const OpenTimeoutMillis = 2000

// BuildURL <scheme>://login?provider=<p>&token=<t>
func BuildURL(scheme, provider, token string) string {
	scheme = strings.TrimSuffix(strings.TrimSpace(scheme), "://")
	if scheme == "" {
		scheme = DefaultScheme
	}
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("token", token)
	return fmt.Sprintf("%s://login?%s", scheme, q.Encode())
}

// Page 跳转页参数
type Page struct {
	SchemeURL string
	AppName   string
}

type pageData struct {
	Page
	TimeoutMillis int
}

var page = template.Must(template.New("deeplink").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Open {{.AppName}}</title>
<style>
body{margin:0;min-height:100vh;display:flex;align-items:center;justify-content:center;background:#111827;color:#fff;font-family:Helvetica,Arial,sans-serif}
.card{max-width:420px;padding:32px;border-radius:16px;background:rgba(31,41,55,.6);border:1px solid rgba(55,65,81,.5)}
h1{font-size:22px;text-align:center}
p{color:#9ca3af;font-size:14px}
button{margin-top:24px;width:100%;padding:12px;border:0;border-radius:12px;background:#6366f1;color:#fff;font-size:16px;cursor:pointer}
#fallback{display:none;margin-top:24px;padding:16px;border-radius:12px;background:rgba(234,179,8,.1);color:#facc15;font-size:14px}
</style>
</head>
<body>
<div class="card">
  <h1>Successfully connected to {{.AppName}} Account</h1>
  <p>You have successfully connected to {{.AppName}} Account. Now it's time to open {{.AppName}}.</p>
  <button id="retry" type="button">Open {{.AppName}}</button>
  <div id="fallback">
    <p>It seems {{.AppName}} app didn't open correctly. Possible reasons:</p>
    <ul>
      <li>{{.AppName}} app is not installed</li>
      <li>Browser blocked automatic app opening</li>
      <li>System permissions prevented app launch</li>
    </ul>
    <p>Please ensure {{.AppName}} app is installed, then click the button above to try again.</p>
  </div>
</div>
<script>
(function () {
  var scheme = {{.SchemeURL}};
  var timeout = {{.TimeoutMillis}};
  var fallback = document.getElementById("fallback");

  function attempt() {
    fallback.style.display = "none";
    var iframe = document.createElement("iframe");
    iframe.style.display = "none";
    iframe.src = scheme;
    document.body.appendChild(iframe);
    window.location.href = scheme;
    setTimeout(function () {
      if (iframe.parentNode) {
        iframe.parentNode.removeChild(iframe);
      }
      if (!document.hidden) {
        fallback.style.display = "block";
      }
    }, timeout);
  }

  document.addEventListener("visibilitychange", function () {
    if (document.hidden) {
      fallback.style.display = "none";
    }
  });
  document.getElementById("retry").addEventListener("click", attempt);
  attempt();
})();
</script>
</body>
</html>
`))

// Render 写出跳转页。SchemeURL 只出现在脚本里，以 JS 字符串字面量输出。
func Render(w io.Writer, p Page) error {
	if p.AppName == "" {
		p.AppName = DefaultScheme
	}
	return page.Execute(w, pageData{Page: p, TimeoutMillis: OpenTimeoutMillis})
}
