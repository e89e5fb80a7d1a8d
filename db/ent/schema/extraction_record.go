package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"

	"github.com/seremi5/expense-management/constants"
	"github.com/seremi5/expense-management/db/ent/schema/utils"
)

type ExtractionRecord struct{ ent.Schema }

func (ExtractionRecord) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "extraction_records"},
	}
}

func (ExtractionRecord) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		// explicit FK
		field.UUID("file_id", uuid.UUID{}).Optional().Nillable(),
		field.String("file_name").NotEmpty(),
		field.String("kind").NotEmpty().
			Validate(utils.EnumValidator(
				string(constants.KindInvoice),
				string(constants.KindReceipt),
				string(constants.KindDocument),
			)),
		field.String("status").NotEmpty().
			Validate(utils.EnumValidator(
				string(constants.RecordStatusExtracted),
				string(constants.RecordStatusNeedsReview),
				string(constants.RecordStatusFailed),
			)),
		field.JSON("payload", json.RawMessage{}).
			Optional(),
		field.JSON("errors", []string{}).
			Optional(),
		field.JSON("warnings", []string{}).
			Optional(),
		field.String("failure").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.Int64("duration_ms").NonNegative().Default(0),
		field.Time("created_at").Default(time.Now),
	}
}

func (ExtractionRecord) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("file", DocumentFile.Type).
			Ref("records").
			Field("file_id").
			Unique(),
	}
}

func (ExtractionRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "created_at"),
		index.Fields("file_id"),
	}
}
