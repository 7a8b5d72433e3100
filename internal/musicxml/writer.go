/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package musicxml

import (
	"fmt"
	"io"
	"strings"
)

// xmlWriter emits indented XML one tag at a time. The first write error
// sticks and every later call is a no-op, so call sites stay linear and
// check err once at the end.
type xmlWriter struct {
	w     io.Writer
	level int
	err   error
}

func (wr *xmlWriter) fmt(format string, args ...interface{}) {
	if wr.err != nil {
		return
	}
	_, wr.err = fmt.Fprintf(wr.w, "%s%s\n", strings.Repeat("  ", wr.level), fmt.Sprintf(format, args...))
}

// tag opens an element and returns the closure that closes it.
func (wr *xmlWriter) tag(name string, attrs ...interface{}) func() {
	open := name
	for i := 0; i+1 < len(attrs); i += 2 {
		open = fmt.Sprintf("%s %v=%q", open, attrs[i], fmt.Sprintf("%v", attrs[i+1]))
	}
	wr.fmt("<%s>", open)
	wr.level++
	return func() {
		wr.level--
		wr.fmt("</%s>", name)
	}
}

func (wr *xmlWriter) emptyTag(name string) {
	wr.fmt("<%s/>", name)
}

func (wr *xmlWriter) contentTag(name string, content interface{}) {
	wr.fmt("<%s>%s</%s>", name, escapeText(fmt.Sprintf("%v", content)), name)
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
