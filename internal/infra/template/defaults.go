package template

// Compiled-in defaults keep the engine rendering even when no external
// template assets are configured or the asset store is unreachable.

const defaultCodeHTML = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
<div style="max-width:560px;margin:24px auto;background:#ffffff;border-radius:6px;padding:32px;">
  <h2 style="margin-top:0;color:#1f2d3d;">{{.Branding.Title}}</h2>
  <p>Your {{.Branding.AppName}} verification code is:</p>
  <p style="font-size:28px;letter-spacing:6px;font-weight:bold;color:#1f2d3d;">{{.Code}}</p>
  <p>The code is valid for {{.ExpireMinutes}} minutes. Please do not share it with anyone.</p>
  <p style="color:#8492a6;font-size:12px;">If you did not request this code, you can safely ignore this message. Someone may have typed your address by mistake.</p>
  <p style="color:#8492a6;font-size:12px;">{{.Branding.AppName}} {{if .Branding.Contact}}| {{.Branding.Contact}}{{end}}</p>
</div>
</body>
</html>`

const defaultActionHTML = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
<div style="max-width:560px;margin:24px auto;background:#ffffff;border-radius:6px;padding:32px;">
  <h2 style="margin-top:0;color:#1f2d3d;">{{.Branding.Title}}</h2>
  <p>Please confirm this action for your {{.Branding.AppName}} account:</p>
  <p><a href="{{.URL}}" style="display:inline-block;background:#409eff;color:#ffffff;padding:12px 28px;border-radius:4px;text-decoration:none;">{{.ButtonLabel}}</a></p>
  <p>If the button does not work, copy this link into your browser: {{.URL}}</p>
  {{if .Reminder}}<p style="color:#8492a6;font-size:12px;">{{.Reminder}}</p>{{end}}
  <p style="color:#8492a6;font-size:12px;">{{.Branding.AppName}} {{if .Branding.Contact}}| {{.Branding.Contact}}{{end}}</p>
</div>
</body>
</html>`

const defaultPlainHTML = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
<div style="max-width:560px;margin:24px auto;background:#ffffff;border-radius:6px;padding:32px;">
  <h2 style="margin-top:0;color:#1f2d3d;">{{.Branding.Title}}</h2>
  <p>{{.Message}}</p>
  {{if .SecurityTip}}<p style="color:#8492a6;font-size:12px;">{{.SecurityTip}}</p>{{end}}
  <p style="color:#8492a6;font-size:12px;">{{.Branding.AppName}} {{if .Branding.Contact}}| {{.Branding.Contact}}{{end}}</p>
</div>
</body>
</html>`
