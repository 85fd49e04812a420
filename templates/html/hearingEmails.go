package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderGenericEmail generates branded HTML for a generic email.
// The subject is displayed in the header banner, and bodyContent is plain text
// that gets HTML-escaped and has newlines converted to <br> tags.
func RenderGenericEmail(subject, bodyContent string) string {
	escaped := html.EscapeString(bodyContent)
	htmlBody := strings.ReplaceAll(escaped, "\n", "<br>")
	escapedSubject := html.EscapeString(subject)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f4f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: #1e3a5f; padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 40px 30px; color: #333; line-height: 1.6; }
    .footer { padding: 30px; text-align: center; color: #8a8a96; font-size: 12px; border-top: 1px solid #e5e5ea; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>LexFlow Legal Case Management · This is an automated message, please do not reply.</p>
    </div>
  </div>
</body>
</html>`, escapedSubject, escapedSubject, htmlBody)
}

// RenderHearingReminderEmail generates the HTML for the day-before
// hearing reminder sent to the parties of a case.
func RenderHearingReminderEmail(recipientName, caseNumber, hearingType, roomNumber, date, timeStr string) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Hearing Reminder</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f4f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: #1e3a5f; padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 40px 30px; color: #333; line-height: 1.6; }
    .detail-box { background: #f0f4f8; border: 1px solid #d6e0ea; border-radius: 8px; padding: 20px; margin: 20px 0; }
    .detail-box table { width: 100%%; border-collapse: collapse; }
    .detail-box td { padding: 6px 0; font-size: 14px; }
    .detail-box td.label { color: #5a6b7c; width: 35%%; }
    .footer { padding: 30px; text-align: center; color: #8a8a96; font-size: 12px; border-top: 1px solid #e5e5ea; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Hearing Tomorrow</h1>
    </div>
    <div class="content">
      <h2>Hello %s,</h2>
      <p>This is a reminder that a hearing for case <strong>%s</strong> is scheduled for tomorrow.</p>
      <div class="detail-box">
        <table>
          <tr><td class="label">Type</td><td>%s</td></tr>
          <tr><td class="label">Room</td><td>%s</td></tr>
          <tr><td class="label">Date</td><td>%s</td></tr>
          <tr><td class="label">Time</td><td>%s</td></tr>
        </table>
      </div>
      <p>Please arrive at least 15 minutes early. Contact your lawyer if you cannot attend.</p>
    </div>
    <div class="footer">
      <p>LexFlow Legal Case Management · This is an automated message, please do not reply.</p>
    </div>
  </div>
</body>
</html>`, html.EscapeString(recipientName), html.EscapeString(caseNumber),
		html.EscapeString(hearingType), html.EscapeString(roomNumber),
		html.EscapeString(date), html.EscapeString(timeStr))
}
