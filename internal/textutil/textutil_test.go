package textutil

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "diseno completo", Fold("Diseño Completo"))
	assert.Equal(t, "tecnologia educacion", Fold("TECNOLOGÍA educación"))
	assert.Equal(t, "plain", Fold("plain"))
}

func TestContainsAny(t *testing.T) {
	text := Fold("Quiero un DISEÑO completo para mi cafetería")
	assert.True(t, ContainsAny(text, []string{"mockup", "diseño completo"}))
	assert.True(t, ContainsAny(text, []string{"cafeteria"}))
	assert.False(t, ContainsAny(text, []string{"paleta", " "}))

	k, ok := FirstMatch(text, []string{"wireframe", "Diseño completo"})
	assert.True(t, ok)
	assert.Equal(t, "Diseño completo", k)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "crea un sitio", Truncate("crea   un\nsitio", 60))

	long := "crea un sitio web para un restaurante de comida mexicana con reservas en línea y menú"
	out := Truncate(long, 30)
	assert.LessOrEqual(t, runewidth.StringWidth(out), 30)
	assert.Contains(t, out, Ellipsis)
	assert.Equal(t, long, Truncate(long, 0))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Sitio Web Azul", Title("sitio web azul"))
}
