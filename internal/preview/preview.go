// Package preview writes exported meshes as a binary glTF file so the
// deduplicated geometry can be inspected in any glTF viewer.
package preview

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/b2l/internal/export"
)

// Build creates a document with one node and mesh per packed mesh and one
// primitive per submesh. Primitives of a mesh share their vertex accessors.
// Empty meshes are left out.
func Build(meshes []export.MeshResult, materials []string) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "b2l preview"

	matIndex := make(map[string]int, len(materials))
	for i, name := range materials {
		matIndex[name] = i
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:      name,
			AlphaMode: gltf.AlphaOpaque,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(1),
			},
		})
	}

	for _, res := range meshes {
		m := res.Packed
		if m == nil || m.Empty() {
			continue
		}

		attributes := map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, m.Positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, m.Normals),
		}
		for l, uvs := range m.UVs {
			attributes[fmt.Sprintf("TEXCOORD_%d", l)] = modeler.WriteTextureCoord(doc, flipV(uvs))
		}
		if len(m.Tangents) > 0 {
			attributes[gltf.TANGENT] = modeler.WriteTangent(doc, tangentW(m.Tangents[0]))
		}

		mesh := &gltf.Mesh{Name: res.Name}
		for _, sm := range m.Submeshes {
			first := 3 * sm.FirstTriangle
			prim := &gltf.Primitive{
				Attributes: attributes,
				Indices:    gltf.Index(modeler.WriteIndices(doc, m.Indices[first:first+3*sm.TriangleCount])),
			}
			name := ""
			if int(sm.Material) < len(res.Materials) {
				name = res.Materials[sm.Material]
			}
			if i, ok := matIndex[name]; ok {
				prim.Material = gltf.Index(i)
			}
			mesh.Primitives = append(mesh.Primitives, prim)
		}

		doc.Meshes = append(doc.Meshes, mesh)
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: res.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc
}

// Write builds the document and saves it as a .glb file.
func Write(path string, meshes []export.MeshResult, materials []string) error {
	if err := gltf.SaveBinary(Build(meshes, materials), path); err != nil {
		return fmt.Errorf("writing preview %s: %w", path, err)
	}
	return nil
}

// flipV moves UVs from a bottom-left to glTF's top-left origin.
func flipV(uvs [][2]float32) [][2]float32 {
	out := make([][2]float32, len(uvs))
	for i, uv := range uvs {
		out[i] = [2]float32{uv[0], 1 - uv[1]}
	}
	return out
}

// tangentW converts the bitangent sign to glTF's convention, where the
// bitangent is cross(normal, tangent) * w.
func tangentW(ts [][4]float32) [][4]float32 {
	out := make([][4]float32, len(ts))
	for i, t := range ts {
		out[i] = [4]float32{t[0], t[1], t[2], -t[3]}
	}
	return out
}
