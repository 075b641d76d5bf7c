package loader

import (
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// AssetExt is the file extension of shader assets.
const AssetExt = ".shader"

// loaderBackend turns the bytes of one asset file into a descriptor.
type loaderBackend interface {
	// Parse decodes one asset.
	//
	// Parameters:
	//   - name: the asset path, used in error messages
	//   - data: the asset contents
	//
	// Returns:
	//   - *shader.ShaderDescriptor: the parsed descriptor
	//   - error: error if the asset is invalid
	Parse(name string, data []byte) (*shader.ShaderDescriptor, error)

	// Accepts reports whether a file name belongs to this backend.
	//
	// Parameters:
	//   - name: the file name or path
	//
	// Returns:
	//   - bool: true if the backend should parse the file
	Accepts(name string) bool
}

// assetLoaderBackend parses the textual shader asset format.
type assetLoaderBackend struct {
	options []shader.ParseOption
}

var _ loaderBackend = &assetLoaderBackend{}

func newAssetLoaderBackend(options ...shader.ParseOption) *assetLoaderBackend {
	return &assetLoaderBackend{options: options}
}

func (b *assetLoaderBackend) Parse(name string, data []byte) (*shader.ShaderDescriptor, error) {
	return shader.Parse(string(data), b.options...)
}

func (b *assetLoaderBackend) Accepts(name string) bool {
	return strings.EqualFold(path.Ext(strings.ReplaceAll(name, "\\", "/")), AssetExt)
}
