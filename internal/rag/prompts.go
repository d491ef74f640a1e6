package rag

const condensePrompt = `Given the chat history and the latest user question, ` +
	`rewrite the question as a standalone question that can be understood ` +
	`without the chat history. Do NOT answer the question. ` +
	`If no rewriting is needed, return the question as is.`

const answerPrompt = `You are an assistant answering questions about the author's blog posts. ` +
	`Use only the following retrieved blog excerpts to answer. ` +
	`If the excerpts do not contain the answer, say you don't know; do not make one up. ` +
	`Answer in the language the question was asked in.

Excerpts:
%s`
