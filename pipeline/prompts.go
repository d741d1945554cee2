package pipeline

import (
	"fmt"
	"strings"

	"github.com/poiesic/quorum/core"
)

const (
	rolePrimary             = "You are a research specialist. Answer the user's question directly and accurately."
	roleKeyPoints           = "You are a key point extraction expert."
	roleRetrievalQuality    = "You are a retrieval quality assessor."
	roleRefusalAssessment   = "You are a refusal assessment expert."
	roleSemanticConsistency = "You are a semantic consistency reviewer."
	roleHallucinationCheck  = "You are a hallucination detection expert."
	roleIntegration         = "You are an integration expert who writes the final answer."
)

func domainLine(domain string) string {
	if domain == "" {
		return ""
	}
	return fmt.Sprintf("Answer within the field of %s and ignore unrelated meanings of the question's terms.\n", domain)
}

func buildPrimary(in StageInput) string {
	var b strings.Builder
	b.WriteString(domainLine(in.Domain))

	if in.ContextAvailable() {
		b.WriteString("Answer the question using the reference material below. ")
		b.WriteString("Prefer the references over general knowledge and do not invent facts they do not support.\n\n")
		fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(in.Question))
		for i, chunk := range in.Context {
			fmt.Fprintf(&b, "Reference %d: %s\n", i+1, strings.TrimSpace(chunk))
		}
		return b.String()
	}

	b.WriteString("Requirements:\n")
	b.WriteString("1. Answer the question directly in one to three sentences and do not decline.\n")
	b.WriteString("2. Stay on the question; do not discuss unrelated fields.\n")
	b.WriteString("3. Output only the answer, without greetings or closing remarks.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(in.Question))
	return b.String()
}

func buildKeyPoints(in StageInput) string {
	return "Extract the core key points from the specialist's answer.\n" +
		"Requirements:\n" +
		"1. The key points must match the user's question and miss nothing essential.\n" +
		"2. Present them as a short list of phrases, not full sentences.\n" +
		"3. Drop redundant material and keep only concepts, data and conclusions.\n\n" +
		"Specialist answer: " + output(in, core.StagePrimary) + "\n"
}

func buildRetrievalQuality(in StageInput) string {
	return "Assess how relevant the extracted key points are to the user's question.\n" +
		"Requirements:\n" +
		"1. Judge how well the key points match the question.\n" +
		"2. Give one relevance rating: High, Medium or Low.\n" +
		"3. Justify the rating in one sentence.\n\n" +
		"Key points: " + output(in, core.StageKeyPoints) + "\n" +
		"User question: " + strings.TrimSpace(in.Question) + "\n"
}

func buildRefusalAssessment(in StageInput) string {
	return "Check whether the specialist's answer improperly dodged the question.\n" +
		"Requirements:\n" +
		"1. An improper refusal is a reasonable question left without a useful answer, an evasion of its core, or a refusal without reason.\n" +
		"2. State a verdict: improper refusal present, or no improper refusal.\n" +
		"3. Give the basis for the verdict in one or two sentences.\n\n" +
		"User question: " + strings.TrimSpace(in.Question) + "\n" +
		"Specialist answer: " + output(in, core.StagePrimary) + "\n"
}

func buildSemanticConsistency(in StageInput) string {
	return "Check the specialist's answer for internal contradictions or missing coverage.\n" +
		"Requirements:\n" +
		"1. A contradiction is a conflict between claims or figures inside the answer.\n" +
		"2. Missing coverage means a core part of the question is not addressed.\n" +
		"3. State a verdict: consistent and complete, contradiction present, or coverage missing.\n" +
		"4. Give the basis for the verdict in one or two sentences.\n\n" +
		"User question: " + strings.TrimSpace(in.Question) + "\n" +
		"Specialist answer: " + output(in, core.StagePrimary) + "\n"
}

func buildHallucinationCheck(in StageInput) string {
	return "Check whether the specialist's answer contains fabricated information.\n" +
		"Requirements:\n" +
		"1. Fabrication covers nonexistent facts, false data, unsupported claims and wrong associations between concepts.\n" +
		"2. State a verdict: no hallucination, or hallucination present.\n" +
		"3. If present, point out the fabricated content in one or two sentences.\n\n" +
		"User question: " + strings.TrimSpace(in.Question) + "\n" +
		"Specialist answer: " + output(in, core.StagePrimary) + "\n"
}

func buildIntegration(in StageInput) string {
	var b strings.Builder
	b.WriteString(domainLine(in.Domain))
	b.WriteString("Write the final answer from all of the expert reviews below.\n")
	b.WriteString("Requirements:\n")
	b.WriteString("1. Start from the specialist answer and give a complete, direct answer to the question.\n")
	b.WriteString("2. Add a short reliability note based on the reviews.\n")
	b.WriteString("3. If a review found a refusal, contradiction or fabrication, correct it in the answer.\n")
	b.WriteString("4. Write fluently and clearly; never decline to answer.\n\n")

	labels := []struct {
		name  core.StageName
		label string
	}{
		{core.StagePrimary, "Specialist answer"},
		{core.StageKeyPoints, "Key points"},
		{core.StageRetrievalQuality, "Retrieval quality review"},
		{core.StageRefusalAssessment, "Refusal review"},
		{core.StageSemanticConsistency, "Consistency review"},
		{core.StageHallucinationCheck, "Hallucination review"},
	}
	for _, l := range labels {
		fmt.Fprintf(&b, "%s: %s\n", l.label, output(in, l.name))
	}
	fmt.Fprintf(&b, "User question: %s\n", strings.TrimSpace(in.Question))
	return b.String()
}

func output(in StageInput, name core.StageName) string {
	return strings.TrimSpace(in.Outputs[name])
}
