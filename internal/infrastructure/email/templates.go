package email

import "html"

// Rendered bodies travel inside the notification envelope; the mail
// consumer never templates anything itself.

const SubjectPasswordReset = "Reset your password"
const SubjectApplicationStatus = "Application Status Update"

// ForgotPasswordHTML renders the password-reset email around the reset link.
func ForgotPasswordHTML(resetLink string) string {
	esc := html.EscapeString(resetLink)
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <title>Reset Password</title>
</head>
<body style="margin:0; padding:0; font-family: Arial, sans-serif; background:#ffffff; color:#333;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:40px 20px;">
        <table width="600" cellpadding="0" cellspacing="0">
          <tr>
            <td>
              <h3 style="margin-top:0;">Reset your password</h3>

              <p>
                You requested a password reset for your HireMe account.
              </p>

              <p>
                Click the link below to set a new password:
              </p>

              <p>
                <a href="` + esc + `" style="color:#0066cc;">
                  ` + esc + `
                </a>
              </p>

              <p>
                This link will expire in <strong>15 minutes</strong>.
              </p>

              <p>
                If you didn't request this, you can safely ignore this email.
              </p>

              <p style="margin-top:40px; font-size:12px; color:#777;">
                &mdash; HireMe
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`
}

// ApplicationStatusHTML renders the status-change notification for a job
// application.
func ApplicationStatusHTML(jobTitle string) string {
	esc := html.EscapeString(jobTitle)
	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Application Status Update</title>
</head>
<body style="margin:0; padding:0; font-family: Arial, sans-serif; background:#f4f4f4;">
  <div style="max-width:600px; margin:40px auto; background:#ffffff; padding:24px; border-radius:6px;">

    <h2 style="margin-top:0; color:#333;">
      Application Status Update
    </h2>

    <p style="color:#333; font-size:14px;">
      Hi,
    </p>

    <p style="color:#333; font-size:14px;">
      Your application for the position of
      <strong>` + esc + `</strong>
      has been updated.
    </p>

    <p style="color:#555; font-size:14px;">
      Please log in to HireMe to check the latest status.
    </p>

    <p style="color:#555; font-size:14px;">
      Thank you for applying.
    </p>

    <hr style="border:none; border-top:1px solid #e0e0e0; margin:24px 0;" />

    <p style="color:#999; font-size:12px; margin:0;">
      &copy; 2025 HireMe
    </p>
    <p style="color:#999; font-size:12px; margin:4px 0 0;">
      This is an automated email. Please do not reply.
    </p>

  </div>
</body>
</html>
`
}
