// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Render 定義輸出行為
type Render interface {
	Write(w io.Writer, s *Summary) error
}

// Json渲染
type JsonRender struct{}

func (jr *JsonRender) Write(w io.Writer, s *Summary) error {
	return json.NewEncoder(w).Encode(s)
}

// YAML渲染：Numbers 這類一維陣列輸出成 flow style，較好閱讀
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, s *Summary) error {
	return forceReadableList(w, s)
}

// TableRender 終端機表格
type TableRender struct{}

func (tr *TableRender) Write(w io.Writer, s *Summary) error {
	_, err := io.WriteString(w, s.Table())
	return err
}

// RenderFor 依名稱取得 Render："json"、"yaml"、其他一律為表格。
func RenderFor(format string) Render {
	switch format {
	case "json":
		return &JsonRender{}
	case "yaml", "yml":
		return &YAMLRender{}
	default:
		return &TableRender{}
	}
}

func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// 最內層的一維 sequence 改為 flow style：[a, b, c]；外層維度保持展開。
func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		hasChild := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				hasChild = true
				break
			}
		}
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		if !hasChild {
			n.Style = yaml.FlowStyle
		}
	}
}
