package npmrc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesired(t *testing.T) {
	assert.Equal(t, []string{
		"@acme:registry=https://npm.pkg.github.com",
		"//npm.pkg.github.com/:_authToken=${NPM_TOKEN}",
	}, Desired("acme"))
}

func TestMerge(t *testing.T) {
	t.Run("empty file gets exactly the desired lines", func(t *testing.T) {
		merged, changed := Merge("", "acme")
		require.True(t, changed)
		assert.Equal(t, strings.Join(Desired("acme"), "\n")+"\n", merged)
	})

	t.Run("converged file is untouched", func(t *testing.T) {
		content := strings.Join(Desired("acme"), "\n") + "\n"
		merged, changed := Merge(content, "acme")
		assert.False(t, changed)
		assert.Equal(t, content, merged)
	})

	t.Run("unrelated lines keep their order, stale directives are dropped", func(t *testing.T) {
		content := strings.Join([]string{
			"registry=https://registry.npmjs.org",
			"//npm.pkg.github.com/:_authToken=ghp_old",
			"",
			"save-exact=true",
			"@legacy:registry=https://npm.pkg.github.com",
			"loglevel=warn",
		}, "\n")

		merged, changed := Merge(content, "acme")
		require.True(t, changed)
		assert.Equal(t, strings.Join([]string{
			"registry=https://registry.npmjs.org",
			"save-exact=true",
			"loglevel=warn",
			"@acme:registry=https://npm.pkg.github.com",
			"//npm.pkg.github.com/:_authToken=${NPM_TOKEN}",
		}, "\n")+"\n", merged)
	})

	t.Run("org change replaces the previous scope mapping", func(t *testing.T) {
		first, _ := Merge("", "acme")
		second, changed := Merge(first, "globex")
		require.True(t, changed)
		assert.Equal(t, strings.Join(Desired("globex"), "\n")+"\n", second)
	})

	t.Run("merge is convergent", func(t *testing.T) {
		content := "audit=false\n//npm.pkg.github.com/:always-auth=true\n"
		for i := 0; i < 3; i++ {
			var changed bool
			content, changed = Merge(content, "acme")
			assert.Equal(t, i == 0, changed, "iteration %d", i)
		}
		assert.Equal(t, strings.Join(append([]string{"audit=false"}, Desired("acme")...), "\n")+"\n", content)
	})

	t.Run("loose matching leaves lines that merely mention the host", func(t *testing.T) {
		// The directive match is prefix/suffix based on purpose; a comment
		// referencing the host in the middle of the line survives.
		content := "# tokens for npm.pkg.github.com live in the keychain\n"
		merged, changed := Merge(content, "acme")
		require.True(t, changed)
		assert.Contains(t, merged, "# tokens for npm.pkg.github.com live in the keychain")
	})
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/home/u/.npmrc", Path("/home/u"))
}
