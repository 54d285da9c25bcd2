package demoserver

import "net/http"

// Resource is one path of a fixture site.
type Resource struct {
	Status      int
	ContentType string
	Body        string

	// Location makes the resource a redirect.
	Location string
}

// Site is a virtual host with a known favicon layout.
type Site struct {
	// Name is the first label of the host, e.g. "svg" for www.svg.demo.test.
	Name        string
	Description string

	// Expect is the outcome a resolver with default settings should reach.
	Expect string

	Resources map[string]Resource
}

// Fixed icon payloads. They are not valid images; nothing here decodes them.
const (
	icoBody   = "\x00\x00\x01\x00demo-ico"
	pngBody   = "\x89PNG\r\n\x1a\ndemo-png"
	svgBody   = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16"><circle cx="8" cy="8" r="8"/></svg>`
	largeBody = "\x89PNG\r\n\x1a\ndemo-png-192"
)

func html(head string) Resource {
	return Resource{
		ContentType: "text/html; charset=utf-8",
		Body:        "<!DOCTYPE html>\n<html>\n<head>\n<title>demo</title>\n" + head + "\n</head>\n<body><h1>demo</h1></body>\n</html>\n",
	}
}

// GetAllSites returns all demo site definitions.
func GetAllSites() []Site {
	return []Site{
		{
			Name:        "ico",
			Description: "Serves /favicon.ico and also declares an SVG that is never fetched",
			Expect:      "found image/x-icon from /favicon.ico",
			Resources: map[string]Resource{
				"/":            html(`<link rel="icon" type="image/svg+xml" href="/never.svg">`),
				"/favicon.ico": {ContentType: "image/vnd.microsoft.icon", Body: icoBody},
			},
		},
		{
			Name:        "svg",
			Description: "No /favicon.ico; declares a PNG and an SVG",
			Expect:      "found image/svg+xml",
			Resources: map[string]Resource{
				"/": html(`<link rel="icon" type="image/png" sizes="32x32" href="/icon-32.png">
<link rel="icon" type="image/svg+xml" href="/icon.svg">`),
				"/icon-32.png": {ContentType: "image/png", Body: pngBody},
				"/icon.svg":    {ContentType: "image/svg+xml", Body: svgBody},
			},
		},
		{
			Name:        "sizes",
			Description: "Several PNG sizes and an apple-touch-icon; the largest wins",
			Expect:      "found image/png from /apple-touch-icon.png",
			Resources: map[string]Resource{
				"/": html(`<link rel="icon" type="image/png" sizes="16x16" href="/icon-16.png">
<link rel="icon" type="image/png" sizes="32x32" href="/icon-32.png">
<link rel="apple-touch-icon" sizes="180x180" href="/apple-touch-icon.png">`),
				"/icon-16.png":          {ContentType: "image/png", Body: pngBody},
				"/icon-32.png":          {ContentType: "image/png", Body: pngBody},
				"/apple-touch-icon.png": {ContentType: "image/png", Body: largeBody},
			},
		},
		{
			Name:        "redirect",
			Description: "The home page redirects to /app/, whose relative icon resolves against the final URL",
			Expect:      "found image/png from /app/icon.png",
			Resources: map[string]Resource{
				"/":             {Status: http.StatusFound, Location: "/app/"},
				"/app/":         html(`<link rel="icon" type="image/png" href="icon.png">`),
				"/app/icon.png": {ContentType: "image/png", Body: pngBody},
			},
		},
		{
			Name:        "shortcut",
			Description: "Legacy shortcut icon without a type attribute",
			Expect:      "found image/x-icon",
			Resources: map[string]Resource{
				"/":                  html(`<link rel="shortcut icon" href="/static/fav.ico">`),
				"/static/fav.ico":    {ContentType: "image/x-icon", Body: icoBody},
				"/static/unused.png": {ContentType: "image/png", Body: pngBody},
			},
		},
		{
			Name:        "broken",
			Description: "Declares an icon that returns 404",
			Expect:      "not_found",
			Resources: map[string]Resource{
				"/": html(`<link rel="icon" type="image/png" href="/gone.png">`),
			},
		},
		{
			Name:        "bare",
			Description: "No favicon anywhere",
			Expect:      "not_found",
			Resources: map[string]Resource{
				"/": html(""),
			},
		},
		{
			Name:        "error",
			Description: "Home page fails with 500 and there is no /favicon.ico",
			Expect:      "not_found",
			Resources: map[string]Resource{
				"/": {Status: http.StatusInternalServerError, ContentType: "text/plain", Body: "boom"},
			},
		},
		{
			Name:        "forbidden",
			Description: "Home page is blocked with 403 but /favicon.ico is still served",
			Expect:      "found image/x-icon from /favicon.ico",
			Resources: map[string]Resource{
				"/":            {Status: http.StatusForbidden, ContentType: "text/html", Body: "<h1>access denied</h1>"},
				"/favicon.ico": {ContentType: "image/x-icon", Body: icoBody},
			},
		},
	}
}
