// Package assets holds the contents page theme: an html/template and a
// stylesheet. The built-in theme is embedded; a user directory may override
// either file:
//
//	{dir}/styles/contents.css
//	{dir}/templates/contents.html
//
// The template receives Title, Style, Body, Source and Captured.
package assets
