package shader

// Engine limits reflected in the sizes of built-in array properties.
const (
	MaxLights                 = 16
	MaxBoneMatrices           = 256
	MaxBlendShapeWeightGroups = 32
)

// Names of the engine-owned resources. Property groups with these names are filled by the
// renderer every frame and their property lists are regenerated on parse.
const (
	BuiltInCameraData       = "oxy_cameraData"
	BuiltInLightData        = "oxy_lightData"
	BuiltInGraphicsSettings = "oxy_graphicsSettings"
	BuiltInLightsBlock      = "oxy_lightsBlock"
	BuiltInInstanceData     = "oxy_instanceData"
	BuiltInBoneMatrices     = "oxy_boneMatrices"
	BuiltInSceneDepth       = "oxy_sceneDepth"
)

var builtInGroups = map[string]func() []PropertyDeclaration{
	BuiltInCameraData: func() []PropertyDeclaration {
		return []PropertyDeclaration{
			NewProperty("viewProjectionMatrix", PropertyKindMatrix4),
			NewProperty("position", PropertyKindVector3),
			NewProperty("upVector", PropertyKindVector3),
			NewProperty("sideVector", PropertyKindVector3),
			NewProperty("zNear", PropertyKindFloat),
			NewProperty("zFar", PropertyKindFloat),
			NewProperty("zRange", PropertyKindFloat),
		}
	},
	BuiltInLightData: func() []PropertyDeclaration {
		return []PropertyDeclaration{
			NewProperty("lightPosition", PropertyKindVector3),
			NewProperty("ambientLightColor", PropertyKindVector4),
		}
	},
	BuiltInGraphicsSettings: func() []PropertyDeclaration {
		return []PropertyDeclaration{
			NewProperty("usePOM", PropertyKindBool),
		}
	},
	BuiltInLightsBlock: func() []PropertyDeclaration {
		return []PropertyDeclaration{
			NewProperty("lightCount", PropertyKindInt),
			NewArrayProperty("lightsColorRadius", PropertyKindVector4Array, MaxLights),
			NewArrayProperty("lightsParameters", PropertyKindVector2Array, MaxLights),
			NewArrayProperty("lightsPosition", PropertyKindVector3Array, MaxLights),
			NewArrayProperty("lightsDirection", PropertyKindVector3Array, MaxLights),
		}
	},
	BuiltInInstanceData: func() []PropertyDeclaration {
		return []PropertyDeclaration{
			NewProperty("worldMatrix", PropertyKindMatrix4),
			NewProperty("worldViewProjection", PropertyKindMatrix4),
			NewProperty("blendShapesCount", PropertyKindInt),
			NewProperty("useSkeletalAnimation", PropertyKindBool),
			NewArrayProperty("blendShapesWeights", PropertyKindVector4Array, MaxBlendShapeWeightGroups),
		}
	},
	BuiltInBoneMatrices: func() []PropertyDeclaration {
		return []PropertyDeclaration{
			NewArrayProperty("matrices", PropertyKindMatrix4Array, MaxBoneMatrices),
		}
	},
}

// BuiltInGroup returns the engine definition of a built-in property group.
//
// Parameters:
//   - name: the resource name, e.g. BuiltInCameraData
//
// Returns:
//   - []PropertyDeclaration: a fresh property list
//   - bool: false if name is not a built-in property group
func BuiltInGroup(name string) ([]PropertyDeclaration, bool) {
	gen, ok := builtInGroups[name]
	if !ok {
		return nil, false
	}
	return gen(), true
}

// regenerateBuiltIns replaces the properties of every recognised built-in group in place.
func regenerateBuiltIns(desc *ShaderDescriptor) {
	for i, r := range desc.Resources {
		if _, ok := r.Kind.(PropertyGroupResource); !ok {
			continue
		}
		if props, ok := BuiltInGroup(r.Name); ok {
			desc.Resources[i].Kind = PropertyGroupResource{Properties: props}
		}
	}
}
