package mods

// SchemaField records when a metadata.json field first appeared
type SchemaField struct {
	Name       string
	Introduced uint32
}

// SchemaFields is the field history of the mod metadata schema.
// New fields are appended here with the version that introduces them, so a
// migration from version N only has to look at entries with Introduced > N.
var SchemaFields = []SchemaField{
	{"id", 1},
	{"name", 1},
	{"path", 1},
	{"metadata_version", 1},
	{"description", 1},
	{"executable_path", 1},
	{"version", 1},
	{"icon_data", 1},
	{"banner_data", 1},
	{"logo_data", 1},
	{"logo_position", 1},
	{"engine", 1},
	{"display_order", 1},
	{"process_id", 1},
	{"contributors", 1},
	{"last_played", 1},
	{"date_added", 1},
}

// FieldsAt returns the names of the fields defined at schema version v
func FieldsAt(v uint32) []string {
	var names []string
	for _, f := range SchemaFields {
		if f.Introduced <= v {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldsSince returns the fields added after schema version v
func FieldsSince(v uint32) []string {
	var names []string
	for _, f := range SchemaFields {
		if f.Introduced > v {
			names = append(names, f.Name)
		}
	}
	return names
}
