// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"fmt"
	"strings"
)

// systemPrompt is sent as the first message of every article completion.
const systemPrompt = "Você é um assistente útil."

// BuildArticlePrompt renders the user message that asks the model for a
// single JSON object with the title, excerpt, tags, content and images keys.
func BuildArticlePrompt(userPrompt string, imageCount, minWords int) string {
	var b strings.Builder
	b.WriteString("Você é um gerador de artigos de blog em português. Receba o prompt do usuário e responda em JSON com estas chaves:\n")
	b.WriteString("  - title: string (título do artigo)\n")
	b.WriteString("  - excerpt: string (meta description, até 160 caracteres)\n")
	b.WriteString("  - tags: array de strings (meta tags)\n")
	b.WriteString("  - content: string (HTML completo do artigo, com elementos <p>, <h2>, etc.)\n")
	b.WriteString("  - images: array de objetos com { prompt: string, alt: string }\n")
	fmt.Fprintf(&b, "Gere exatamente %d itens em images com descrições de imagens relevantes.\n", imageCount)
	b.WriteString("Gere pelo menos 5 minutos de leitura e use linguagem simples.\n")
	b.WriteString("Foque o texto em SEO, com palavras-chave relevantes.\n")
	fmt.Fprintf(&b, "O artigo deve ter no mínimo %d palavras.\n", minWords)
	b.WriteString("Prompt do usuário: ")
	b.WriteString(userPrompt)
	b.WriteString("\nResponda APENAS com o JSON, sem qualquer texto adicional ou explicações.")
	return b.String()
}
