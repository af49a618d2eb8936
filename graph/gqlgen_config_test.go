package graph

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const modulePath = "github.com/VitaminP8/linkfeed"

type gqlgenConfig struct {
	AutoBind []string `yaml:"autobind"`
	Model    struct {
		Filename string `yaml:"filename"`
		Package  string `yaml:"package"`
	} `yaml:"model"`
	Exec struct {
		Filename string `yaml:"filename"`
	} `yaml:"exec"`
}

// gqlgen удаляет models_gen.go перед генерацией, поэтому пакет моделей
// нельзя autobind-ить: генерация не найдет его и упадет
func TestGqlgenConfig_DoesNotAutobindGeneratedPackages(t *testing.T) {
	b, err := os.ReadFile("../gqlgen.yml")
	require.NoError(t, err)

	var cfg gqlgenConfig
	require.NoError(t, yaml.Unmarshal(b, &cfg))

	require.Equal(t, "graph/model/models_gen.go", cfg.Model.Filename)
	require.Equal(t, "model", cfg.Model.Package)

	generated := []string{
		path.Join(modulePath, path.Dir(cfg.Model.Filename)),
		path.Join(modulePath, path.Dir(cfg.Exec.Filename)),
	}
	for _, pkg := range cfg.AutoBind {
		assert.NotContains(t, generated, pkg)
	}
}
