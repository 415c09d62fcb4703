package mars

// Prompt templates for the exploration, verification, improvement and
// strategy-extraction calls each phase makes. Wording is ported from
// the reference prompt set so effects described by the coordinator
// match real, testable call sites rather than opaque stand-ins.

const explorationSystemPrompt = `You are a helpful assistant tasked with solving complex problems.
Think through each step carefully and provide a well-reasoned answer.
Your goal is to arrive at the correct solution through systematic analysis.`

const explorationPrompt = `Please solve the following problem step by step.
Show all your work and reasoning. Be thorough and systematic.
Consider edge cases and verify your logic at each step.

%s`

const verificationPrompt = `You are an expert verifier tasked with evaluating solutions.
Assess the provided solution for:
1. Mathematical correctness - Is the answer actually correct?
2. Completeness - Does the solution address all aspects of the problem?
3. Rigor - Is the reasoning sound and well-justified?
4. Clarity - Is the solution easy to follow?

Provide a verification result: CORRECT or INCORRECT
Also provide a confidence score from 0.0 to 1.0.

Format your response as:
RESULT: CORRECT|INCORRECT
SCORE: [0.0-1.0]
FEEDBACK: [Your detailed feedback]

Solution to verify:
%s

Answer: %s`

const improvementPrompt = `The previous solution needs improvement.
Please revise it to address the feedback provided.
Be particularly careful to fix any errors in reasoning.
Provide your improved solution with clear step-by-step reasoning.

Original solution:
Reasoning: %s
Answer: %s

Feedback: %s`

const strategyExtractionPrompt = `Analyze the following successful solution and identify key strategies and techniques used.

Solution:
%s

Please identify and list 3-5 key strategies or techniques that contributed to solving this problem well.
Format as a numbered list with brief explanations.`
