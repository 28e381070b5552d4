package logging

import (
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type resourceField struct {
	id construct.ResourceId
}

func (field resourceField) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", field.id.Kind.String())
	enc.AddString("name", field.id.Name)
	return nil
}

func ResourceField(id construct.ResourceId) zap.Field {
	return zap.Object("resource", resourceField{id: id})
}

func RefField(ref construct.AttributeRef) zap.Field {
	return zap.Stringer("ref", ref)
}

func RegionField(region string) zap.Field {
	return zap.String("region", region)
}
