// Package diagnostics 把着色器编译器的报错列表换算成编辑器可渲染的
// 行高亮（marker）和行标注（annotation）。纯函数，无任何状态。
package diagnostics

import "strings"

// CompileError 是编译器报出的一条错误，行号从 1 开始。
type CompileError struct {
	LineNumber int    `json:"lineNumber"`
	Message    string `json:"message"`
}

// Marker 是编辑器里一段行内高亮，行列都从 0 开始。
type Marker struct {
	StartRow  int    `json:"startRow"`
	StartCol  int    `json:"startCol"`
	EndRow    int    `json:"endRow"`
	EndCol    int    `json:"endCol"`
	ClassName string `json:"className"`
	Type      string `json:"type"`
}

// Annotation 是编辑器行号槽里的一条错误标注。
type Annotation struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Type   string `json:"type"`
	Text   string `json:"text"`
}

const markerClassName = "errorMarker"

// Collect 把一份源码和它的编译错误映射成 marker 与 annotation 两组结果。
// 每个出错的行各产生至多一个 marker 和一个 annotation；同一行的多条错误
// 信息按输入顺序用换行拼进同一个 annotation，不去重。行号超出源码范围
// （小于 1 或大于总行数）的错误被静默丢弃。全空白的行不产生 marker
// （零宽高亮渲染不出来），但仍保留 annotation。
func Collect(source string, errors []CompileError) ([]Marker, []Annotation) {
	lines := strings.Split(source, "\n")

	markers := make([]Marker, 0, len(errors))
	annotations := make([]Annotation, 0, len(errors))
	markerRows := make(map[int]struct{}, len(errors))
	annotationIndex := make(map[int]int, len(errors))

	for _, e := range errors {
		row := e.LineNumber - 1 // 编辑器行从 0 开始
		if row < 0 || row >= len(lines) {
			continue
		}

		if _, ok := markerRows[row]; !ok {
			if start, end, ok := lineSpan(lines[row]); ok {
				markers = append(markers, Marker{
					StartRow:  row,
					StartCol:  start,
					EndRow:    row,
					EndCol:    end,
					ClassName: markerClassName,
					Type:      "text",
				})
				markerRows[row] = struct{}{}
			}
		}

		if i, ok := annotationIndex[row]; ok {
			annotations[i].Text += "\n" + e.Message
		} else {
			annotationIndex[row] = len(annotations)
			annotations = append(annotations, Annotation{Row: row, Column: 0, Type: "error", Text: e.Message})
		}
	}

	return markers, annotations
}

// lineSpan 求一行去掉首尾空白后的列范围，全空白的行返回 ok=false。
func lineSpan(line string) (start, end int, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, 0, false
	}
	start = strings.Index(line, trimmed)
	return start, start + len(trimmed), true
}

// ErrorState 汇总编辑器两个标签页的报错状态，链接错误同时点亮两个标签。
type ErrorState struct {
	VertexTabError   bool   `json:"vertexTabError"`
	FragmentTabError bool   `json:"fragmentTabError"`
	LinkerMessage    string `json:"linkerMessage"`
}

// Summarize 计算标签页的错误角标和拼接后的链接器错误信息。
func Summarize(vertex, fragment, linker []CompileError) ErrorState {
	messages := make([]string, 0, len(linker))
	for _, e := range linker {
		messages = append(messages, e.Message)
	}
	return ErrorState{
		VertexTabError:   len(vertex) > 0 || len(linker) > 0,
		FragmentTabError: len(fragment) > 0 || len(linker) > 0,
		LinkerMessage:    strings.Join(messages, "\n"),
	}
}
