package render

import "html/template"

// Portrait outline and eyes, drawn on an 800x600 canvas
const (
	portraitPath = "M400,600 C300,600 180,550 130,450 C120,420 135,380 140,350 " +
		"C100,280 150,150 250,100 C270,90 290,120 300,150 L350,140 L400,110 L450,140 " +
		"L500,150 C510,120 530,90 550,100 C650,150 700,280 660,350 C665,380 680,420 670,450 " +
		"C620,550 500,600 400,600 Z"
	portraitFill   = "#101829"
	portraitStroke = "#e94560"
)

var portraitSVG = template.HTML(`<svg class="epic-cat-portrait" viewBox="0 0 800 600" preserveAspectRatio="xMidYMax meet">` +
	`<path d="` + portraitPath + `" fill="` + portraitFill + `" stroke="` + portraitStroke + `" stroke-width="3" />` +
	`<g class="cat-eyes">` +
	`<ellipse class="cat-eye" cx="330" cy="300" rx="50" ry="30" />` +
	`<ellipse class="cat-eye" cx="470" cy="300" rx="50" ry="30" />` +
	`</g></svg>`)

// PortraitSVG returns the portrait markup used by the HTML widget
func PortraitSVG() template.HTML {
	return portraitSVG
}

// PortraitASCII is the terminal rendition of the portrait
const PortraitASCII = `    /\_____/\
   /  o   o  \
  ( ==  ^  == )
   )         (
  (           )
 ( (  )   (  ) )
(__(__)___(__)__)`
