// Package xmlfe extrae registros canónicos de comprobantes electrónicos
// de Costa Rica (esquema v4.3) a partir de XML con o sin namespaces.
package xmlfe

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// StripNamespaces elimina el prefijo de namespace de cada elemento del árbol.
// Después de esta pasada todas las búsquedas usan rutas sin prefijo.
func StripNamespaces(doc *xmlquery.Node) {
	for n := doc; n != nil; n = nextNode(n, doc) {
		if n.Type == xmlquery.ElementNode {
			n.Prefix = ""
			n.NamespaceURI = ""
		}
	}
}

// nextNode recorre el árbol en preorden sin recursión
func nextNode(n, root *xmlquery.Node) *xmlquery.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil && n != root {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// GetText retorna el texto recortado del primer descendiente que coincide
// con la ruta relativa (separada por /), o defaultValue si no existe o
// no tiene texto. Nunca falla por una ruta ausente.
func GetText(node *xmlquery.Node, path, defaultValue string) string {
	if node == nil {
		return defaultValue
	}
	found := xmlquery.FindOne(node, path)
	if found == nil {
		return defaultValue
	}
	text := strings.TrimSpace(found.InnerText())
	if text == "" {
		return defaultValue
	}
	return text
}

// RootElement retorna el primer elemento hijo del documento parseado
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}
