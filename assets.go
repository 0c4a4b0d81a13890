package oitview

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/google/uuid"
)

type AssetId string

const (
	VertexShaderFile   = "shader.vert"
	FragmentShaderFile = "shader.frag"
)

var ErrAssetNotFound = errors.New("asset not found")

// ImageAsset holds still-encoded image bytes; decoding is left to the GPU side.
type ImageAsset struct {
	version uint
	Name    string
	Data    []byte
}

func (a ImageAsset) Version() uint { return a.version }

// ShaderAsset is a vertex/fragment source pair read from one shader directory.
type ShaderAsset struct {
	version  uint
	Dir      string
	Vertex   string
	Fragment string
}

func (a ShaderAsset) Version() uint { return a.version }

// AssetServer resolves resources relative to a resource root. Images are read
// from the resource FS, shader directories from the shader FS.
type AssetServer struct {
	mu      sync.Mutex
	res     fs.FS
	shaders fs.FS
	images  map[AssetId]ImageAsset
	sources map[AssetId]ShaderAsset
}

func NewAssetServer(res, shaders fs.FS) *AssetServer {
	return &AssetServer{
		res:     res,
		shaders: shaders,
		images:  make(map[AssetId]ImageAsset),
		sources: make(map[AssetId]ShaderAsset),
	}
}

func (server *AssetServer) LoadImage(name string) (AssetId, error) {
	data, err := fs.ReadFile(server.res, name)
	if err != nil {
		return "", fmt.Errorf("load image %s: %w", name, err)
	}

	id := makeAssetId()
	server.mu.Lock()
	server.images[id] = ImageAsset{Name: name, Data: data}
	server.mu.Unlock()
	return id, nil
}

func (server *AssetServer) Image(id AssetId) (ImageAsset, error) {
	server.mu.Lock()
	defer server.mu.Unlock()
	img, ok := server.images[id]
	if !ok {
		return ImageAsset{}, fmt.Errorf("%w: image %s", ErrAssetNotFound, id)
	}
	return img, nil
}

// LoadShader reads shader.vert and shader.frag from dir.
func (server *AssetServer) LoadShader(dir string) (AssetId, error) {
	src, err := server.readShader(dir)
	if err != nil {
		return "", err
	}

	id := makeAssetId()
	server.mu.Lock()
	server.sources[id] = src
	server.mu.Unlock()
	return id, nil
}

func (server *AssetServer) Shader(id AssetId) (ShaderAsset, error) {
	server.mu.Lock()
	defer server.mu.Unlock()
	src, ok := server.sources[id]
	if !ok {
		return ShaderAsset{}, fmt.Errorf("%w: shader %s", ErrAssetNotFound, id)
	}
	return src, nil
}

// ReloadShader re-reads the sources behind id and bumps its version. On error
// the previous sources stay in place.
func (server *AssetServer) ReloadShader(id AssetId) (ShaderAsset, error) {
	prev, err := server.Shader(id)
	if err != nil {
		return ShaderAsset{}, err
	}
	src, err := server.readShader(prev.Dir)
	if err != nil {
		return prev, err
	}
	src.version = prev.version + 1

	server.mu.Lock()
	server.sources[id] = src
	server.mu.Unlock()
	return src, nil
}

func (server *AssetServer) readShader(dir string) (ShaderAsset, error) {
	vert, err := fs.ReadFile(server.shaders, path.Join(dir, VertexShaderFile))
	if err != nil {
		return ShaderAsset{}, fmt.Errorf("load shader %s: %w", dir, err)
	}
	frag, err := fs.ReadFile(server.shaders, path.Join(dir, FragmentShaderFile))
	if err != nil {
		return ShaderAsset{}, fmt.Errorf("load shader %s: %w", dir, err)
	}
	return ShaderAsset{
		Dir:      dir,
		Vertex:   string(vert),
		Fragment: string(frag),
	}, nil
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
