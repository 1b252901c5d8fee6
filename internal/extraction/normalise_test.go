package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalise(t *testing.T) {
	assert.Equal(t, "a b c", Normalise("  a \n\t b\r\n\nc  "))
	assert.Equal(t, "", Normalise(" \n "))
}

func TestUsableName(t *testing.T) {
	name, ok := usableName("  Alice   Sharma T.U. Reg No")
	assert.True(t, ok)
	assert.Equal(t, "Alice Sharma", name)

	name, ok = usableName(". J. K. Rowling")
	assert.True(t, ok)
	assert.Equal(t, "J. K. Rowling", name)

	_, ok = usableName("Al")
	assert.False(t, ok)
}

func TestUsableName_LabelNeedsDelimiter(t *testing.T) {
	name, ok := usableName("Anna Marks Regd No:")
	assert.True(t, ok)
	assert.Equal(t, "Anna Marks", name)

	name, ok = usableName("Anna Sharma Marks:")
	assert.True(t, ok)
	assert.Equal(t, "Anna Sharma", name)

	name, ok = usableName("Nobody Known Result:")
	assert.True(t, ok)
	assert.Equal(t, "Nobody Known", name)
}

func TestUsableRegistration(t *testing.T) {
	regd, ok := usableRegistration("-7-2-123-45-2018/")
	assert.True(t, ok)
	assert.Equal(t, "7-2-123-45-2018", regd)

	_, ok = usableRegistration("123")
	assert.False(t, ok)
}

func TestUsableGrade(t *testing.T) {
	for in, want := range map[string]string{"a": "A", "b+": "B+", " F- ": "F-"} {
		got, ok := usableGrade(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "G", "A*", "AB+"} {
		_, ok := usableGrade(in)
		assert.False(t, ok, in)
	}
}

func TestUsableText(t *testing.T) {
	text, ok := usableText("Computer   Science, Marks")
	assert.True(t, ok)
	assert.Equal(t, "Computer Science", text)

	_, ok = usableText(" Grade")
	assert.False(t, ok)
}
