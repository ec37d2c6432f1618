// Package schemas embeds the default component schema shipped with sentinel.
package schemas

import _ "embed"

// ComponentsFile is the file name of the default schema.
const ComponentsFile = "components.schema.json"

// Components is the default component schema document.
//
//go:embed components.schema.json
var Components []byte
