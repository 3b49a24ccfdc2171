package engine

import (
	"fmt"

	"github.com/roach88/cooksync/internal/cook"
)

// Output plug paths on the asset node. The asset publishes cooked data on
// these plugs; synced nodes are connected to them.

func objectPlug(obj int, attr string) string {
	return fmt.Sprintf("outputObjects[%d].%s", obj, attr)
}

func partPlug(k cook.PartKey, attr string) string {
	return fmt.Sprintf("outputObjects[%d].outputGeos[%d].outputParts[%d].%s", k.Object, k.Geo, k.Part, attr)
}

func materialPlug(slot int, attr string) string {
	return fmt.Sprintf("outputMaterials[%d].%s", slot, attr)
}

func instancerPlug(i int, attr string) string {
	return fmt.Sprintf("outputInstancers[%d].%s", i, attr)
}

func indexedPlug(attr string, i int) string {
	return fmt.Sprintf("%s[%d]", attr, i)
}

func partLabel(obj *cook.Object, k cook.PartKey, part *cook.Part) string {
	return fmt.Sprintf("%s/%d/%s",
		cook.SanitizeNodeName(obj.Name, cook.FallbackObject), k.Geo,
		cook.SanitizeNodeName(part.Name, cook.FallbackPart))
}
