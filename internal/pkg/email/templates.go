// internal/pkg/email/templates.go
package email

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        {{template "content" .}}
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}</p>
    </div>
</body>
</html>{{end}}`

var templateSources = map[EmailType]string{
	EmailTypeEmailConfirmation: `{{define "content"}}
        <p>Hello {{.UserName}},</p>
        <p>Please confirm your email address to activate your account.</p>
        <p><a href="{{.ConfirmationURL}}">Confirm my account</a></p>
        <p>This link expires in {{.ExpiresIn}}.</p>
{{end}}`,

	EmailTypeOrderConfirmation: `{{define "content"}}
        <p>Hello {{.UserName}},</p>
        <p>Thank you for your order <strong>#{{.OrderID}}</strong>. Your invoice is attached.</p>
        <table style="width: 100%; border-collapse: collapse;">
            {{range .Items}}
            <tr>
                <td>{{.Quantity}} x {{.Name}}</td>
                <td style="text-align: right;">{{.Total}}</td>
            </tr>
            {{end}}
        </table>
        <p>Subtotal: {{.Subtotal}}</p>
        {{if .Discount}}<p>Discount: -{{.Discount}}</p>{{end}}
        <p>Tax (20%): {{.Tax}}</p>
        <p>Shipping: {{.Shipping}}</p>
        <p><strong>Total: {{.Total}}</strong></p>
{{end}}`,

	EmailTypeVendorRequest: `{{define "content"}}
        <p>A new vendor application is waiting for review.</p>
        <p><strong>{{.ShopName}}</strong> from {{.UserEmail}}</p>
        <p>{{.Description}}</p>
        <p><a href="{{.AdminURL}}">Review applications</a></p>
{{end}}`,

	EmailTypeVendorApproved: `{{define "content"}}
        <p>Hello {{.UserName}},</p>
        <p>Good news: your shop <strong>{{.ShopName}}</strong> was approved. You can now add products.</p>
        <p><a href="{{.SiteURL}}/vendor/products/">Open my shop</a></p>
{{end}}`,

	EmailTypeVendorRejected: `{{define "content"}}
        <p>Hello {{.UserName}},</p>
        <p>Your application for <strong>{{.ShopName}}</strong> was not approved at this time.</p>
        <p>You can update your information and submit it again from your profile.</p>
{{end}}`,
	EmailTypeTwoFactorCode: `{{define "content"}}
        <p>Hello {{.UserName}},</p>
        <p>You asked to turn on two-factor authentication. Your verification code is:</p>
        <p style="font-size:24px;font-weight:bold;letter-spacing:3px">{{.Code}}</p>
        <p>Enter it on your profile page. If you did not ask for this, ignore this message.</p>
{{end}}`,
}
