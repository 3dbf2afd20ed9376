// Package mail 组装登录验证邮件。
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Message 一封邮件的主题与正文
type Message struct {
	Subject string
	HTML    string
	Text    string
}

var verificationHTML = template.Must(template.New("verification").Parse(`<body style="background:#f9f9f9;">
  <table width="100%" border="0" cellspacing="20" cellpadding="0" style="background:#fff;max-width:600px;margin:auto;border-radius:10px;">
    <tr>
      <td align="center" style="padding:10px 0;font-size:22px;font-family:Helvetica,Arial,sans-serif;color:#444;">
        Sign in to <strong>{{.Host}}</strong>
      </td>
    </tr>
    <tr>
      <td align="center" style="padding:20px 0;">
        <table border="0" cellspacing="0" cellpadding="0">
          <tr>
            <td align="center" style="border-radius:5px;" bgcolor="#346df1">
              <a href="{{.URL}}" target="_blank" style="font-size:18px;font-family:Helvetica,Arial,sans-serif;color:#fff;text-decoration:none;border-radius:5px;padding:10px 20px;border:1px solid #346df1;display:inline-block;font-weight:bold;">Sign in</a>
            </td>
          </tr>
        </table>
      </td>
    </tr>
    <tr>
      <td align="center" style="padding:0 0 10px 0;font-size:16px;line-height:22px;font-family:Helvetica,Arial,sans-serif;color:#444;">
        If you did not request this email you can safely ignore it.
      </td>
    </tr>
  </table>
</body>`))

// BuildVerificationMessage 登录链接邮件，host 只用于展示
func BuildVerificationMessage(url, host string) (Message, error) {
	var buf bytes.Buffer
	if err := verificationHTML.Execute(&buf, struct{ URL, Host string }{URL: url, Host: host}); err != nil {
		return Message{}, fmt.Errorf("渲染验证邮件失败: %w", err)
	}
	return Message{
		Subject: fmt.Sprintf("%s Login Verification", host),
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Sign in to %s\n%s\n\n", host, url),
	}, nil
}

// HostOf 从 https://keenmind.me/xxx 中取出 keenmind.me
func HostOf(baseURL string) string {
	host := baseURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return host
}
