package rails

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("# stub\n"), 0644))
}

func TestResolver_Components(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root, "app/models/user.rb")
	touch(t, root, "app/controllers/users_controller.rb")
	touch(t, root, "app/views/users/index.html.erb")
	touch(t, root, "app/views/users/show.html.erb")
	touch(t, root, "app/serializers/user_serializer.rb")
	touch(t, root, "spec/models/user_spec.rb")
	touch(t, root, "spec/requests/users_spec.rb")
	touch(t, root, "spec/factories/users.rb")
	touch(t, root, "db/migrate/20240115123456_create_users.rb")

	c := NewResolver(root).Components("User")

	assert.Equal(t, filepath.Join("app", "models", "user.rb"), c.Model)
	assert.Equal(t, filepath.Join("app", "controllers", "users_controller.rb"), c.Controller)
	assert.Len(t, c.Views, 2)
	assert.Equal(t, filepath.Join("spec", "models", "user_spec.rb"), c.Specs["model"])
	assert.Equal(t, filepath.Join("spec", "requests", "users_spec.rb"), c.Specs["request"])
	assert.NotContains(t, c.Specs, "controller")
	assert.Equal(t, filepath.Join("db", "migrate", "20240115123456_create_users.rb"), c.Migration)
	assert.Equal(t, filepath.Join("spec", "factories", "users.rb"), c.Factory)
	assert.Equal(t, filepath.Join("app", "serializers", "user_serializer.rb"), c.Serializer)
}

func TestResolver_MissingArtifacts(t *testing.T) {
	t.Parallel()

	c := NewResolver(t.TempDir()).Components("Ghost")
	assert.Empty(t, c.Model)
	assert.Empty(t, c.Controller)
	assert.Empty(t, c.Views)
	assert.Empty(t, c.Specs)
	assert.Empty(t, c.Migration)
}
