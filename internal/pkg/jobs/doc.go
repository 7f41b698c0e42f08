// Package jobs 通过 SSH 调用 Slurm 查询命令, 将输出解析为结构化记录.
//
// 包含四部分:
//   - squeue/sacct 输出解析(在线作业与近期完成作业);
//   - 多集群并发采集(Collector);
//   - 作业输出文件路径解析与缓存(OutputResolver);
//   - 作业 GPU 归属解析与利用率采集(GPUResolver).
//
// 所有远程调用都经由 exec.Runner, 单个集群或节点的失败以记录内的错误字段返回, 不影响其他结果.
package jobs
