// Package export converts generated tutorials to HTML and PDF by
// shelling out to pandoc and wkhtmltopdf. Both tools are optional;
// callers probe with HaveTool and treat ErrToolNotFound as a skip.
package export
