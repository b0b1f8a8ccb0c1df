// Package assets loads and caches meshes, textures, and shaders by path,
// so scene objects referencing the same file share one copy.
package assets

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Faultbox/softrender/internal/engine/model"
	"github.com/Faultbox/softrender/internal/engine/shader"
	"github.com/Faultbox/softrender/internal/engine/texture"
)

// Cache deduplicates loaded resources. Loaded values are shared and must
// be treated as read-only during rendering.
type Cache struct {
	mu       sync.Mutex
	meshes   map[string]*model.Mesh
	textures map[string]*texture.Texture
	shaders  map[string]shader.Shader

	hits   int
	misses int
}

// NewCache creates an empty resource cache.
func NewCache() *Cache {
	return &Cache{
		meshes:   make(map[string]*model.Mesh),
		textures: make(map[string]*texture.Texture),
		shaders:  make(map[string]shader.Shader),
	}
}

// Mesh loads a mesh by path, dispatching on the extension (.obj, .gltf,
// .glb). Repeated loads of the same path return the cached mesh.
func (c *Cache) Mesh(path string) (*model.Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.meshes[path]; ok {
		c.hits++
		return m, nil
	}
	c.misses++

	var (
		m   *model.Mesh
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		m, err = model.LoadOBJ(path)
	case ".gltf", ".glb":
		m, err = model.LoadGLTF(path)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	c.meshes[path] = m
	return m, nil
}

// Texture loads a texture by path (.tga or .dds), cached.
func (c *Cache) Texture(path string) (*texture.Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.textures[path]; ok {
		c.hits++
		return t, nil
	}
	c.misses++

	t, err := texture.Load(path)
	if err != nil {
		return nil, err
	}

	c.textures[path] = t
	return t, nil
}

// Shader returns the named shader, cached. Materials sharing a shader
// share its uniform block; the renderer rewrites it for every draw
// command, so sharing is safe for serialized submits.
func (c *Cache) Shader(name string) (shader.Shader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.shaders[name]; ok {
		c.hits++
		return s, nil
	}
	c.misses++

	var s shader.Shader
	switch name {
	case "", "blinn_phong":
		s = shader.NewBlinnPhong()
	default:
		return nil, fmt.Errorf("unknown shader: %s", name)
	}

	c.shaders[name] = s
	return s, nil
}

// Stats returns cache hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops every cached resource.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meshes = make(map[string]*model.Mesh)
	c.textures = make(map[string]*texture.Texture)
	c.shaders = make(map[string]shader.Shader)
	c.hits = 0
	c.misses = 0
}
